package sqlxrepos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/presence/core"
	"github.com/trezcool/presence/core/admin"
	"github.com/trezcool/presence/storage/database/entitystore"
)

type adminRepository struct {
	t *Tables
}

var _ admin.Repository = (*adminRepository)(nil)

func NewAdminRepository(t *Tables) *adminRepository {
	return &adminRepository{t: t}
}

func (repo *adminRepository) Create(ctx context.Context, adm *admin.Admin) error {
	_, err := repo.t.Admins.Add(ctx, adm)
	return err
}

func (repo *adminRepository) Get(ctx context.Context, id int64) (admin.Admin, error) {
	adm, err := repo.t.Admins.Get(ctx, id)
	return adm, notFound(err, "admin", id)
}

func (repo *adminRepository) GetByEmail(ctx context.Context, email string) (admin.Admin, error) {
	adm, err := repo.t.Admins.FirstByIndex(ctx, idxEmail, email)
	if errors.Is(err, entitystore.ErrNoRecord) {
		return adm, admin.ErrNotFound
	}
	return adm, err
}

func (repo *adminRepository) QueryAll(ctx context.Context) ([]admin.Admin, error) {
	return repo.t.Admins.All(ctx, core.DBOrdering{Field: "surname", Ascending: true}, core.DBOrdering{Field: "name", Ascending: true})
}

func (repo *adminRepository) Update(ctx context.Context, id int64, fields core.Fields) error {
	n, err := repo.t.Admins.Update(ctx, id, fields)
	return updated(n, err, "admin", id)
}

func (repo *adminRepository) Delete(ctx context.Context, id int64) error {
	return repo.t.Admins.Delete(ctx, id)
}

func (repo *adminRepository) Count(ctx context.Context) (int64, error) {
	return repo.t.Admins.Count(ctx)
}
