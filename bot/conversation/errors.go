package conversation

import (
	"errors"
	"fmt"
)

// ErrEntryNotFound marks events that name a missing catalog entry.
var ErrEntryNotFound = errors.New("entry not found")

// EntryNotFoundError names the missing entry.
type EntryNotFoundError struct {
	Kind string
	Key  string
}

func (e *EntryNotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Key)
}

func (e *EntryNotFoundError) Is(target error) bool { return target == ErrEntryNotFound }

func (e *EntryNotFoundError) Code() string { return "ENTRY_NOT_FOUND" }

func notFound(kind, key string) *EntryNotFoundError {
	return &EntryNotFoundError{Kind: kind, Key: key}
}

// Entry kinds.
const (
	kindTemplate          = "template"
	kindTemplateCategory  = "template_category"
	kindComponentCategory = "component_category"
	kindStyleCategory     = "style_category"
	kindTariff            = "tariff"
	kindField             = "field"
	kindPage              = "page"
)
