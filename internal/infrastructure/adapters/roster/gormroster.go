// Package roster adapts the roster subsystem's tables to the billing
// engine's read-side port. The tables are owned and written by the roster
// service; this adapter only counts rows and never joins the billing
// transaction.
package roster

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/mentora-inc/mentora/internal/domain/roster"
	"github.com/mentora-inc/mentora/internal/shared/constants"
	"github.com/mentora-inc/mentora/internal/shared/logger"
)

type GormRosterService struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewGormRosterService(db *gorm.DB, logger logger.Interface) roster.Service {
	return &GormRosterService{db: db, logger: logger}
}

func (s *GormRosterService) CountAssignedStudents(ctx context.Context, teacherID uint) (int, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Table(constants.TableStudentProfiles).
		Where("teacher_id = ? AND deleted_at IS NULL", teacherID).
		Count(&count).Error
	if err != nil {
		s.logger.Errorw("failed to count assigned students", "error", err, "teacher_id", teacherID)
		return 0, fmt.Errorf("failed to count assigned students: %w", err)
	}
	return int(count), nil
}

func (s *GormRosterService) TeacherExists(ctx context.Context, teacherID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Table(constants.TableTeacherProfiles).
		Where("id = ? AND deleted_at IS NULL", teacherID).
		Count(&count).Error
	if err != nil {
		s.logger.Errorw("failed to check teacher", "error", err, "teacher_id", teacherID)
		return false, fmt.Errorf("failed to check teacher: %w", err)
	}
	return count > 0, nil
}
