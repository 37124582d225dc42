package adapters

import (
	"context"

	"callcenter_backend/internal/telephony"
	"callcenter_backend/internal/users"
)

// ExtensionDirectoryAdapter maps the users repository's extension bindings
// into the telephony context's roster type.
type ExtensionDirectoryAdapter struct {
	repo *users.Repository
}

func NewExtensionDirectoryAdapter(repo *users.Repository) *ExtensionDirectoryAdapter {
	return &ExtensionDirectoryAdapter{repo: repo}
}

func (a *ExtensionDirectoryAdapter) ListExtensions(ctx context.Context) ([]telephony.Extension, error) {
	bindings, err := a.repo.ListExtensions(ctx)
	if err != nil {
		return nil, err
	}
	extensions := make([]telephony.Extension, 0, len(bindings))
	for _, b := range bindings {
		extensions = append(extensions, telephony.Extension{Username: b.Username, ExtensionID: b.ExtensionID})
	}
	return extensions, nil
}
