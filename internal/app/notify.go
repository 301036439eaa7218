package app

import (
	"github.com/coreos/go-systemd/v22/daemon"

	"noticeboard/pkg/logx"
)

// notifier reports lifecycle state to the service manager.
type notifier interface {
	Ready()
	Reloading()
	Stopping()
}

type systemdNotifier struct {
	log  logx.Logger
	send func(state string) (bool, error)
}

func newSystemdNotifier(log logx.Logger) *systemdNotifier {
	return &systemdNotifier{
		log: log,
		send: func(state string) (bool, error) {
			return daemon.SdNotify(false, state)
		},
	}
}

func (n *systemdNotifier) Ready()     { n.notify(daemon.SdNotifyReady) }
func (n *systemdNotifier) Reloading() { n.notify(daemon.SdNotifyReloading) }
func (n *systemdNotifier) Stopping()  { n.notify(daemon.SdNotifyStopping) }

// notify is a no-op outside systemd (NOTIFY_SOCKET unset).
func (n *systemdNotifier) notify(state string) {
	sent, err := n.send(state)
	if err != nil {
		n.log.Warn("sd_notify failed", logx.String("state", state), logx.Err(err))
		return
	}
	if sent {
		n.log.Debug("sd_notify", logx.String("state", state))
	}
}
