package recycle

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Cotizaciones-api/internal/application/audit"
	"github.com/jhoicas/Cotizaciones-api/internal/application/dto"
	"github.com/jhoicas/Cotizaciones-api/internal/domain"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/repository"
)

// UserGuard valida dentro de la transacción que el usuario se puede borrar.
type UserGuard func(ctx context.Context, user *entity.User, users repository.UserRepository) error

// UseCase archiva registros en la papelera, los lista y los restaura.
type UseCase struct {
	txRunner TxRunner
	binRepo  repository.RecycleBinRepository
	audit    audit.Sink
	policy   Policy
}

// NewUseCase construye el caso de uso. policy nil = DefaultPolicy.
func NewUseCase(txRunner TxRunner, binRepo repository.RecycleBinRepository, sink audit.Sink, policy Policy) *UseCase {
	if policy == nil {
		policy = DefaultPolicy()
	}
	return &UseCase{txRunner: txRunner, binRepo: binRepo, audit: sink, policy: policy}
}

// Policy devuelve la política de borrado en uso.
func (uc *UseCase) Policy() Policy {
	return uc.policy
}

// ArchiveInventoryItem guarda el snapshot del producto y lo borra, todo en una transacción.
// Si la política no archiva productos, solo se borra.
func (uc *UseCase) ArchiveInventoryItem(ctx context.Context, actor entity.Actor, id string) (*entity.InventoryItem, error) {
	var archived *entity.InventoryItem
	err := uc.txRunner.RunArchive(ctx, func(binRepo repository.RecycleBinRepository, inventoryRepo repository.InventoryRepository, _ repository.UserRepository) error {
		item, err := inventoryRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		if uc.policy.SoftDelete(entity.KindInventoryItem) {
			entry, err := NewEntry(entity.KindInventoryItem, item.ID, actor.UserID, item)
			if err != nil {
				return err
			}
			if err := binRepo.Create(ctx, entry); err != nil {
				return err
			}
		}
		if err := inventoryRepo.Delete(ctx, id); err != nil {
			return err
		}
		archived = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return archived, nil
}

// ArchiveUser igual que ArchiveInventoryItem para usuarios; guard corre antes de borrar.
func (uc *UseCase) ArchiveUser(ctx context.Context, actor entity.Actor, id string, guard UserGuard) (*entity.User, error) {
	var archived *entity.User
	err := uc.txRunner.RunArchive(ctx, func(binRepo repository.RecycleBinRepository, _ repository.InventoryRepository, userRepo repository.UserRepository) error {
		user, err := userRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if user == nil {
			return domain.ErrNotFound
		}
		if guard != nil {
			if err := guard(ctx, user, userRepo); err != nil {
				return err
			}
		}
		if uc.policy.SoftDelete(entity.KindUser) {
			entry, err := NewEntry(entity.KindUser, user.ID, actor.UserID, user)
			if err != nil {
				return err
			}
			if err := binRepo.Create(ctx, entry); err != nil {
				return err
			}
		}
		if err := userRepo.Delete(ctx, id); err != nil {
			return err
		}
		archived = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return archived, nil
}

// List devuelve la papelera con los snapshots parseados (sin hashes de contraseña).
func (uc *UseCase) List(ctx context.Context, actor entity.Actor) ([]dto.RecycleBinEntryResponse, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	entries, err := uc.binRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.RecycleBinEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.RecycleBinEntryResponse{
			ID:            e.ID,
			EntityKind:    string(e.Kind),
			OriginalID:    e.OriginalID,
			Data:          redact(e.Kind, e.Data),
			DeletedBy:     e.DeletedBy,
			DeletedByUser: e.DeletedByName,
			DeletedAt:     e.DeletedAt,
		})
	}
	return out, nil
}

// Restore reinserta el snapshot como una entidad nueva (id nuevo) y elimina la entrada.
// Tipos sin restauración -> domain.ErrNotRestorable y la entrada se conserva.
func (uc *UseCase) Restore(ctx context.Context, actor entity.Actor, entryID string) (string, error) {
	if !actor.IsAdmin() {
		return "", domain.ErrForbidden
	}
	var (
		newID string
		kind  entity.EntityKind
	)
	err := uc.txRunner.RunArchive(ctx, func(binRepo repository.RecycleBinRepository, inventoryRepo repository.InventoryRepository, userRepo repository.UserRepository) error {
		entry, err := binRepo.GetByID(ctx, entryID)
		if err != nil {
			return err
		}
		if entry == nil {
			return domain.ErrNotFound
		}
		kind = entry.Kind
		now := time.Now()
		switch entry.Kind {
		case entity.KindInventoryItem:
			var item entity.InventoryItem
			if err := json.Unmarshal(entry.Data, &item); err != nil {
				return fmt.Errorf("snapshot inválido: %w", err)
			}
			item.ID = uuid.New().String()
			if item.Stock < 0 {
				item.Stock = 0
			}
			item.CreatedAt, item.UpdatedAt = now, now
			if err := inventoryRepo.Create(ctx, &item); err != nil {
				return err
			}
			newID = item.ID
		case entity.KindUser:
			var user entity.User
			if err := json.Unmarshal(entry.Data, &user); err != nil {
				return fmt.Errorf("snapshot inválido: %w", err)
			}
			if user.Username == "" || user.PasswordHash == "" {
				return domain.ErrNotRestorable
			}
			user.ID = uuid.New().String()
			user.Role = entity.NormalizeRole(user.Role)
			user.CreatedAt = now
			if err := userRepo.Create(ctx, &user); err != nil {
				return err
			}
			newID = user.ID
		default:
			return domain.ErrNotRestorable
		}
		return binRepo.Delete(ctx, entryID)
	})
	if err != nil {
		return "", err
	}
	uc.audit.Record(ctx, actor, entity.AuditRestore, fmt.Sprintf("%s %s -> ID: %s", kind, entryID, newID))
	return newID, nil
}
