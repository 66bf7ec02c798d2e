// Package notifications delivers push notifications for archive lifecycle
// events via ntfy. The service degrades to a noop when no topic is
// configured, and every category can be toggled independently.
package notifications
