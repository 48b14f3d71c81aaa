package constants

// Database table names.
const (
	TablePlans              = "plans"
	TableSubscriptions      = "subscriptions"
	TableSubscriptionEvents = "subscription_events"

	// Roster tables, owned by the roster subsystem and read here only.
	TableTeacherProfiles = "teacher_profiles"
	TableStudentProfiles = "student_profiles"
)
