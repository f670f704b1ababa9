// internal/repository/audit.go
package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/grundwerk/grundwerk/internal/domain"
	"github.com/grundwerk/grundwerk/internal/model"
	"gorm.io/gorm"
)

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// FindAllByProject lists the project's audits, newest first, with their
// control snapshots preloaded.
func (r *AuditRepository) FindAllByProject(ctx context.Context, projectID uuid.UUID) ([]*model.Audit, error) {
	var audits []*model.Audit
	result := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("started_at desc").
		Preload("ControlAudits").
		Find(&audits)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to find audits: %w", result.Error)
	}
	return audits, nil
}

// HasInProgress reports whether the project already has an open audit.
func (r *AuditRepository) HasInProgress(ctx context.Context, projectID uuid.UUID) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).
		Model(&model.Audit{}).
		Where("project_id = ? AND status = ?", projectID, model.AuditInProgress).
		Count(&count)
	if result.Error != nil {
		return false, fmt.Errorf("failed to check open audits: %w", result.Error)
	}
	return count > 0, nil
}

// CreateWithSnapshots creates the audit and one control snapshot per current
// project control in a single transaction.
func (r *AuditRepository) CreateWithSnapshots(ctx context.Context, audit *model.Audit, controls []model.ProjectControl) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(audit).Error; err != nil {
			return err
		}
		for _, pc := range controls {
			ca := model.ControlAudit{
				AuditID:            audit.ID,
				ProjectControlID:   pc.ID,
				VerificationStatus: model.VerificationNotVerified,
			}
			if err := tx.Create(&ca).Error; err != nil {
				return err
			}
			audit.ControlAudits = append(audit.ControlAudits, ca)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to start audit: %w", err)
	}
	return nil
}

// FindByIDInProject loads the audit with snapshots, scoped to the project.
func (r *AuditRepository) FindByIDInProject(ctx context.Context, id, projectID uuid.UUID) (*model.Audit, error) {
	var audit model.Audit
	result := r.db.WithContext(ctx).
		Where("id = ? AND project_id = ?", id, projectID).
		Preload("ControlAudits").
		First(&audit)
	if result.Error != nil {
		if isNotFound(result.Error) {
			return nil, domain.ErrAuditNotFound
		}
		return nil, fmt.Errorf("failed to find audit: %w", result.Error)
	}
	return &audit, nil
}

func (r *AuditRepository) Save(ctx context.Context, audit *model.Audit) error {
	if err := r.db.WithContext(ctx).Save(audit).Error; err != nil {
		return fmt.Errorf("failed to update audit: %w", err)
	}
	return nil
}

// Delete removes the audit and its snapshots.
func (r *AuditRepository) Delete(ctx context.Context, audit *model.Audit) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("audit_id = ?", audit.ID).Delete(&model.ControlAudit{}).Error; err != nil {
			return err
		}
		return tx.Delete(audit).Error
	})
	if err != nil {
		return fmt.Errorf("failed to delete audit: %w", err)
	}
	return nil
}

// FindControlAudit loads one snapshot row scoped to its audit.
func (r *AuditRepository) FindControlAudit(ctx context.Context, id, auditID uuid.UUID) (*model.ControlAudit, error) {
	var ca model.ControlAudit
	result := r.db.WithContext(ctx).
		Where("id = ? AND audit_id = ?", id, auditID).
		First(&ca)
	if result.Error != nil {
		if isNotFound(result.Error) {
			return nil, domain.ErrControlAuditNotFound
		}
		return nil, fmt.Errorf("failed to find control audit: %w", result.Error)
	}
	return &ca, nil
}

func (r *AuditRepository) SaveControlAudit(ctx context.Context, ca *model.ControlAudit) error {
	if err := r.db.WithContext(ctx).Save(ca).Error; err != nil {
		return fmt.Errorf("failed to update control audit: %w", err)
	}
	return nil
}
