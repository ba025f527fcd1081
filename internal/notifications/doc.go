// Package notifications delivers run milestones via pluggable notifiers.
//
// The default implementation publishes to ntfy using the topic configured in
// config.toml and gracefully degrades to a no-op when no topic is set. The
// workflow emits two events: a finished episode and a failed run; both can
// be toggled independently in the notifications config section.
//
// Extend this package if you need alternative transports; all workflow code
// depends only on the simple Service interface.
package notifications
