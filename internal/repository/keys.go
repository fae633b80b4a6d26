package repository

// DefaultKeyPrefix namespaces every collection key in the substrate.
const DefaultKeyPrefix = "wellness_system_"

// Collection names, appended to the key prefix.
const (
	CollectionMoodEntries             = "mood_entries"
	CollectionSessions                = "sessions"
	CollectionTasks                   = "tasks"
	CollectionMessages                = "messages"
	CollectionTutoring                = "tutoring_sessions"
	CollectionReferrals               = "referrals"
	CollectionPsychopedagogyReferrals = "psychopedagogy_referrals"
	CollectionPsychopedagogySessions  = "psychopedagogy_sessions"
	CollectionSupportPlans            = "support_plans"
	CollectionReportJobs              = "report_jobs"
)

// Identifier prefixes per collection.
const (
	prefixMood                  = "mood"
	prefixSession               = "session"
	prefixTask                  = "task"
	prefixMessage               = "msg"
	prefixTutoring              = "tutoring"
	prefixReferral              = "ref"
	prefixPsychopedagogyRef     = "psych_ref"
	prefixPsychopedagogySession = "psych_session"
	prefixPlan                  = "plan"
	prefixReport                = "report"
)

// Key returns the substrate key of a collection.
func Key(prefix, collection string) string {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return prefix + collection
}
