package i18n

import (
	"testing"

	"github.com/diagnosis/guardiao-web/internal/domain"
)

func TestNew_LocaleMatching(t *testing.T) {
	tests := []struct {
		locale string
		want   string
	}{
		{"pt-BR", "pt-BR"},
		{"en", "en"},
		{"en-US", "en"},
		{"", "pt-BR"},
		{"not a locale", "pt-BR"},
	}

	for _, tt := range tests {
		t.Run(tt.locale, func(t *testing.T) {
			if got := New(tt.locale).Lang(); got != tt.want {
				t.Fatalf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestTranslator_Strings(t *testing.T) {
	pt := New("pt-BR")
	if got := pt.T(LoginError); got != "Erro ao fazer login" {
		t.Fatalf("Expected login fallback, got %q", got)
	}
	if got := pt.T(ErrRequiredFields, "Destino"); got != "Preencha os campos obrigatórios: Destino" {
		t.Fatalf("Unexpected formatted message %q", got)
	}

	en := New("en")
	if got := en.Status(domain.VisitApproved); got != "Approved" {
		t.Fatalf("Expected Approved, got %q", got)
	}
	if got := en.Action(domain.ActionComplete.Name); got != "Complete" {
		t.Fatalf("Expected Complete, got %q", got)
	}
	if got := en.Field("visitor_document"); got != "Document" {
		t.Fatalf("Expected Document, got %q", got)
	}
}

func TestTranslator_UnknownStatusShownRaw(t *testing.T) {
	if got := New("pt-BR").Status("archived"); got != "archived" {
		t.Fatalf("Expected raw status, got %q", got)
	}
}

func TestCatalog_Complete(t *testing.T) {
	for key := range entries[BrazilianPortuguese] {
		if _, ok := entries[English][key]; !ok {
			t.Fatalf("Expected English entry for %s", key)
		}
	}
	if len(entries[BrazilianPortuguese]) != len(entries[English]) {
		t.Fatal("Expected both catalogs to have the same keys")
	}
}
