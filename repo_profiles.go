package session

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Profiles is the bun-backed profile store. It also satisfies the
// ProfileRepository contract the Manager depends on.
type Profiles interface {
	repository.Repository[*Profile]

	GetProfile(ctx context.Context, id uuid.UUID) (*Profile, error)
	GetProfileTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*Profile, error)

	Fetch(ctx context.Context, identityID string) (*Profile, error)
	Patch(ctx context.Context, identityID string, patch ProfileUpdate) error

	UpdateFields(ctx context.Context, id uuid.UUID, patch ProfileUpdate) error
	UpdateFieldsTx(ctx context.Context, tx bun.IDB, id uuid.UUID, patch ProfileUpdate) error
}

type profiles struct {
	repository.Repository[*Profile]
	db *bun.DB
}

var _ Profiles = (*profiles)(nil)
var _ ProfileRepository = (*profiles)(nil)

func NewProfilesRepository(db *bun.DB) Profiles {
	repo := repository.NewRepository[*Profile](db, repository.ModelHandlers[*Profile]{
		NewRecord: func() *Profile { return &Profile{} },
		GetID: func(p *Profile) uuid.UUID {
			if p == nil {
				return uuid.Nil
			}
			return p.ID
		},
		SetID: func(p *Profile, id uuid.UUID) {
			if p != nil {
				p.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &profiles{
		Repository: repo,
		db:         db,
	}
}

func (p *profiles) GetProfile(ctx context.Context, id uuid.UUID) (*Profile, error) {
	return p.GetProfileTx(ctx, p.db, id)
}

func (p *profiles) GetProfileTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*Profile, error) {
	record := &Profile{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"id": id.String(),
				})
		}
		return nil, err
	}

	return record, nil
}

// UpdateFields writes only the columns the patch names so a partial edit
// can never clobber untouched fields.
func (p *profiles) UpdateFields(ctx context.Context, id uuid.UUID, patch ProfileUpdate) error {
	return p.UpdateFieldsTx(ctx, p.db, id, patch)
}

func (p *profiles) UpdateFieldsTx(ctx context.Context, tx bun.IDB, id uuid.UUID, patch ProfileUpdate) error {
	cols := patch.Columns()
	if len(cols) == 0 {
		return nil
	}

	record := &Profile{ID: id}
	if patch.Name != nil {
		record.Name = *patch.Name
	}
	if patch.AvatarURL != nil {
		record.AvatarURL = *patch.AvatarURL
	}
	if patch.Bio != nil {
		record.Bio = *patch.Bio
	}

	res, err := tx.NewUpdate().
		Model(record).
		Column(cols...).
		Where("?TableAlias.id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}

	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"id": id.String(),
			})
	}

	return nil
}

// Fetch satisfies the ProfileRepository contract with a string identity id.
func (p *profiles) Fetch(ctx context.Context, identityID string) (*Profile, error) {
	id, err := uuid.Parse(identityID)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "malformed identity id").
			WithCode(goerrors.CodeBadRequest)
	}
	return p.GetProfile(ctx, id)
}

// Patch satisfies the ProfileRepository contract with a string identity id.
func (p *profiles) Patch(ctx context.Context, identityID string, patch ProfileUpdate) error {
	id, err := uuid.Parse(identityID)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "malformed identity id").
			WithCode(goerrors.CodeBadRequest)
	}
	return p.UpdateFields(ctx, id, patch)
}
