package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"labstock/internal/models"
)

// CatalogRepository loads the static panel catalog: per panel, the ordered
// canonical title product names of its lot groups.
type CatalogRepository interface {
	Load(ctx context.Context) (models.PanelCatalog, error)
}

type fileCatalogRepo struct {
	path string
}

// NewFileCatalogRepository reads the catalog from a JSON file of shape
// {"panel name": ["title product", ...], ...}.
func NewFileCatalogRepository(path string) CatalogRepository {
	return &fileCatalogRepo{path: path}
}

func (r *fileCatalogRepo) Load(ctx context.Context) (models.PanelCatalog, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			// An absent catalog is a valid configuration: every group
			// falls back to its first member as title.
			return models.NewPanelCatalog(nil), nil
		}
		return models.PanelCatalog{}, fmt.Errorf("read catalog %s: %w", r.path, err)
	}
	var titles map[string][]string
	if err := json.Unmarshal(data, &titles); err != nil {
		return models.PanelCatalog{}, fmt.Errorf("decode catalog %s: %w", r.path, err)
	}
	return models.NewPanelCatalog(titles), nil
}
