package gateway

// Dispatcher is the interface used by services to dispatch events to
// connected WebSocket clients. The concrete Manager implements this interface.
type Dispatcher interface {
	DispatchToServer(serverID int64, event string, data interface{})
	DispatchToUser(userID int64, event string, data interface{})
	DispatchToServerExcept(serverID int64, exceptUserID int64, event string, data interface{})
	SubscribeToServer(userID, serverID int64)
	UnsubscribeFromServer(userID, serverID int64)
}

// NoopDispatcher discards all events. Used by the CLI and in tests where no
// gateway is running.
type NoopDispatcher struct{}

func (NoopDispatcher) DispatchToServer(int64, string, interface{})              {}
func (NoopDispatcher) DispatchToUser(int64, string, interface{})                {}
func (NoopDispatcher) DispatchToServerExcept(int64, int64, string, interface{}) {}
func (NoopDispatcher) SubscribeToServer(int64, int64)                           {}
func (NoopDispatcher) UnsubscribeFromServer(int64, int64)                       {}
