package dashboard

// Notice is a transient message shown to the user.
type Notice struct {
	Title       string
	Description string
	Destructive bool
}

type Notifier interface {
	Notify(Notice)
}

type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }
