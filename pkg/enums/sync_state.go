package enums

// SyncState describes where a session's recompute pipeline currently is.
type SyncState string

const (
	SyncIdle          SyncState = "idle"
	SyncRecalculating SyncState = "recalculating"
	SyncPersisting    SyncState = "persisting"
)
