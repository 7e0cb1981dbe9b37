// Package retention prunes aged audit records on a schedule.
//
// A Pruner runs a cron schedule and deletes every record observed
// before now minus the configured retention window. Pruning is
// best-effort: a failed run is logged and retried on the next tick.
package retention
