// Package i18n holds the UI strings. Brazilian Portuguese is the default;
// English is available through LOCALE=en.
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"github.com/diagnosis/guardiao-web/internal/domain"
)

// Message keys
const (
	AppTitle    = "app.title"
	AppSubtitle = "app.subtitle"

	LoginTitle      = "login.title"
	LoginEmail      = "login.email"
	LoginPassword   = "login.password"
	LoginSubmit     = "login.submit"
	LoginSubmitting = "login.submitting"
	LoginRequired   = "login.required"
	LoginError      = "login.error"
	LoginTooMany    = "login.too_many"

	Logout = "nav.logout"

	StatVisitsToday    = "stats.visits_today"
	StatPendingVisits  = "stats.pending_visits"
	StatVisitorsInside = "stats.visitors_inside"

	VisitsTitle         = "visits.title"
	VisitsEmpty         = "visits.empty"
	VisitsNew           = "visits.new"
	VisitsCancel        = "visits.cancel"
	VisitsSave          = "visits.save"
	VisitsBack          = "visits.back"
	VisitsDetail        = "visits.detail"
	VisitsNotFound      = "visits.not_found"
	VisitsDelete        = "visits.delete"
	VisitsDeleteConfirm = "visits.delete_confirm"

	FieldVisitorName     = "field.visitor_name"
	FieldVisitorDocument = "field.visitor_document"
	FieldDestination     = "field.destination"
	FieldPurpose         = "field.purpose"
	FieldNotes           = "field.notes"
	FieldStatus          = "field.status"
	FieldEntryTime       = "field.entry_time"
	FieldExitTime        = "field.exit_time"
	FieldApprovedBy      = "field.approved_by"
	FieldCreatedBy       = "field.created_by"
	FieldActions         = "field.actions"

	ErrRequiredFields = "error.required_fields"
	ErrCreateVisit    = "error.create_visit"
	ErrUpdateVisit    = "error.update_visit"
	ErrLoadVisit      = "error.load_visit"
	ErrDeleteVisit    = "error.delete_visit"
	ErrInvalidStatus  = "error.invalid_status"
)

var (
	BrazilianPortuguese = language.BrazilianPortuguese
	English             = language.English

	supported = []language.Tag{BrazilianPortuguese, English}
	matcher   = language.NewMatcher(supported)
	cat       = catalog.NewBuilder(catalog.Fallback(BrazilianPortuguese))
)

var entries = map[language.Tag]map[string]string{
	BrazilianPortuguese: {
		AppTitle:    "GUARDIÃO",
		AppSubtitle: "Controle de acesso de visitantes",

		LoginTitle:      "Entrar",
		LoginEmail:      "Email",
		LoginPassword:   "Senha",
		LoginSubmit:     "Entrar",
		LoginSubmitting: "Entrando...",
		LoginRequired:   "Email e senha são obrigatórios",
		LoginError:      "Erro ao fazer login",
		LoginTooMany:    "Muitas tentativas. Tente novamente mais tarde.",

		Logout: "Sair",

		StatVisitsToday:    "Visitas hoje",
		StatPendingVisits:  "Visitas pendentes",
		StatVisitorsInside: "Visitantes no local",

		VisitsTitle:         "Visitas",
		VisitsEmpty:         "Nenhuma visita registrada",
		VisitsNew:           "Nova visita",
		VisitsCancel:        "Cancelar",
		VisitsSave:          "Registrar visita",
		VisitsBack:          "Voltar",
		VisitsDetail:        "Detalhes da visita",
		VisitsNotFound:      "Visita não encontrada",
		VisitsDelete:        "Excluir",
		VisitsDeleteConfirm: "Excluir esta visita?",

		FieldVisitorName:     "Nome do visitante",
		FieldVisitorDocument: "Documento",
		FieldDestination:     "Destino",
		FieldPurpose:         "Motivo",
		FieldNotes:           "Observações",
		FieldStatus:          "Status",
		FieldEntryTime:       "Entrada",
		FieldExitTime:        "Saída",
		FieldApprovedBy:      "Aprovado por",
		FieldCreatedBy:       "Registrado por",
		FieldActions:         "Ações",

		ErrRequiredFields: "Preencha os campos obrigatórios: %s",
		ErrCreateVisit:    "Erro ao registrar visita",
		ErrUpdateVisit:    "Erro ao atualizar visita",
		ErrLoadVisit:      "Erro ao carregar visita",
		ErrDeleteVisit:    "Erro ao excluir visita",
		ErrInvalidStatus:  "Status inválido",

		statusKey(domain.VisitPending):   "Pendente",
		statusKey(domain.VisitApproved):  "Aprovada",
		statusKey(domain.VisitDenied):    "Negada",
		statusKey(domain.VisitCompleted): "Concluída",

		actionKey(domain.ActionApprove.Name):  "Aprovar",
		actionKey(domain.ActionDeny.Name):     "Negar",
		actionKey(domain.ActionComplete.Name): "Finalizar",
	},
	English: {
		AppTitle:    "GUARDIÃO",
		AppSubtitle: "Visitor access control",

		LoginTitle:      "Sign in",
		LoginEmail:      "Email",
		LoginPassword:   "Password",
		LoginSubmit:     "Sign in",
		LoginSubmitting: "Signing in...",
		LoginRequired:   "Email and password are required",
		LoginError:      "Login failed",
		LoginTooMany:    "Too many attempts. Try again later.",

		Logout: "Log out",

		StatVisitsToday:    "Visits today",
		StatPendingVisits:  "Pending visits",
		StatVisitorsInside: "Visitors inside",

		VisitsTitle:         "Visits",
		VisitsEmpty:         "No visits recorded",
		VisitsNew:           "New visit",
		VisitsCancel:        "Cancel",
		VisitsSave:          "Register visit",
		VisitsBack:          "Back",
		VisitsDetail:        "Visit details",
		VisitsNotFound:      "Visit not found",
		VisitsDelete:        "Delete",
		VisitsDeleteConfirm: "Delete this visit?",

		FieldVisitorName:     "Visitor name",
		FieldVisitorDocument: "Document",
		FieldDestination:     "Destination",
		FieldPurpose:         "Purpose",
		FieldNotes:           "Notes",
		FieldStatus:          "Status",
		FieldEntryTime:       "Entry",
		FieldExitTime:        "Exit",
		FieldApprovedBy:      "Approved by",
		FieldCreatedBy:       "Registered by",
		FieldActions:         "Actions",

		ErrRequiredFields: "Fill in the required fields: %s",
		ErrCreateVisit:    "Failed to register visit",
		ErrUpdateVisit:    "Failed to update visit",
		ErrLoadVisit:      "Failed to load visit",
		ErrDeleteVisit:    "Failed to delete visit",
		ErrInvalidStatus:  "Invalid status",

		statusKey(domain.VisitPending):   "Pending",
		statusKey(domain.VisitApproved):  "Approved",
		statusKey(domain.VisitDenied):    "Denied",
		statusKey(domain.VisitCompleted): "Completed",

		actionKey(domain.ActionApprove.Name):  "Approve",
		actionKey(domain.ActionDeny.Name):     "Deny",
		actionKey(domain.ActionComplete.Name): "Complete",
	},
}

func init() {
	for tag, msgs := range entries {
		for key, msg := range msgs {
			if err := cat.SetString(tag, key, msg); err != nil {
				panic(err)
			}
		}
	}
}

func statusKey(s domain.VisitStatus) string { return "status." + string(s) }
func actionKey(name string) string          { return "action." + name }

// Translator renders keys for one locale.
type Translator struct {
	tag     language.Tag
	printer *message.Printer
}

// New returns a translator for the closest supported locale; unknown or
// malformed locales fall back to pt-BR.
func New(locale string) *Translator {
	tag := BrazilianPortuguese
	if parsed, err := language.Parse(locale); err == nil {
		_, idx, conf := matcher.Match(parsed)
		if conf != language.No {
			tag = supported[idx]
		}
	}
	return &Translator{tag: tag, printer: message.NewPrinter(tag, message.Catalog(cat))}
}

// Lang is the BCP 47 tag used for the html lang attribute.
func (t *Translator) Lang() string { return t.tag.String() }

func (t *Translator) T(key string, args ...interface{}) string {
	return t.printer.Sprintf(key, args...)
}

// Status labels a visit status. Unknown statuses are shown raw.
func (t *Translator) Status(s domain.VisitStatus) string {
	key := statusKey(s)
	if _, ok := entries[t.tag][key]; !ok {
		return string(s)
	}
	return t.T(key)
}

func (t *Translator) Action(name string) string {
	return t.T(actionKey(name))
}

// Field labels a visit form field by its JSON name.
func (t *Translator) Field(name string) string {
	return t.T("field." + name)
}
