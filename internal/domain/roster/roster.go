// Package roster exposes the read-side port the billing engine needs from
// the roster subsystem. The concrete adapter lives in
// infrastructure/adapters/roster and reads the roster tables directly.
package roster

import "context"

// Service reports roster facts about teachers. Counts reflect current
// assignments only, not historical ones.
type Service interface {
	// CountAssignedStudents returns how many students are currently
	// assigned to the teacher.
	CountAssignedStudents(ctx context.Context, teacherID uint) (int, error)
	// TeacherExists reports whether a teacher profile exists.
	TeacherExists(ctx context.Context, teacherID uint) (bool, error)
}
