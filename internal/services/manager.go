package services

import (
	"github.com/prepflow/practice-service/internal/cache"
	"github.com/prepflow/practice-service/internal/events"
	"github.com/prepflow/practice-service/internal/llm"
	"github.com/prepflow/practice-service/internal/repositories"
	"github.com/prepflow/practice-service/internal/utils"
)

// ServiceManager bundles the service layer behind one handle for wiring.
type ServiceManager interface {
	Question() QuestionService
	Practice() PracticeService
	Session() SessionService
	Progress() ProgressService
	AI() AIService
	Billing() BillingService
	ImportExport() ImportExportService

	// Close tears down live sessions and pending cache work; called on
	// shutdown.
	Close()
}

type serviceManager struct {
	question     QuestionService
	practice     PracticeService
	session      SessionService
	progress     ProgressService
	ai           AIService
	billing      BillingService
	importExport ImportExportService
}

type Dependencies struct {
	Repo      repositories.Repository
	Cache     cache.CacheService
	Publisher events.EventPublisher
	Completer llm.ChatCompleter
	Checkout  CheckoutGateway
	Logger    utils.Logger
	Validator *utils.Validator
}

func NewServiceManager(deps Dependencies) ServiceManager {
	practice := NewPracticeService(deps.Repo, deps.Publisher, deps.Logger, deps.Validator)
	question := NewQuestionService(deps.Repo, deps.Cache, deps.Logger, deps.Validator)
	return &serviceManager{
		question:     question,
		practice:     practice,
		session:      NewSessionService(practice, deps.Logger),
		progress:     NewProgressService(deps.Repo, deps.Logger),
		ai:           NewAIService(deps.Repo, deps.Completer, deps.Logger, deps.Validator),
		billing:      NewBillingService(deps.Repo, deps.Checkout, deps.Logger),
		importExport: NewImportExportService(deps.Repo, question, deps.Logger),
	}
}

func (m *serviceManager) Question() QuestionService          { return m.question }
func (m *serviceManager) Practice() PracticeService          { return m.practice }
func (m *serviceManager) Session() SessionService            { return m.session }
func (m *serviceManager) Progress() ProgressService          { return m.progress }
func (m *serviceManager) AI() AIService                      { return m.ai }
func (m *serviceManager) Billing() BillingService            { return m.billing }
func (m *serviceManager) ImportExport() ImportExportService  { return m.importExport }

func (m *serviceManager) Close() {
	m.session.CloseAll()
	m.question.Close()
}
