// zhmcclient is a Go client library for the IBM Z Hardware Management
// Console Web Services API.
// Copyright (C) 2025  Matthew Burns
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package zhmc

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-stomp/stomp/v3"
	"github.com/google/uuid"
)

// Notification is one message delivered on a subscribed topic: its STOMP
// frame headers and JSON-decoded body.
type Notification struct {
	Headers map[string]string
	Body    map[string]any
}

// NotificationReceiver subscribes to one or more HMC JMS/STOMP topics
// (/topic/<name>, as returned by Session.GetNotificationTopics) and
// delivers Notifications over a buffered channel. It also dispatches
// object-notification pushes into any Resource registered with it via
// Register, so a resource with auto-update enabled (Resource.EnableAutoUpdate)
// observes property and inventory-change notifications. Each notification is
// dispatched before it is sent on Notifications(); once that channel's
// buffer is full, the receiver waits for the caller to read from it before
// it dispatches the next one.
type NotificationReceiver struct {
	conn          *stomp.Conn
	subscriptions []*stomp.Subscription
	id            string

	notifications chan Notification
	closeOnce     sync.Once
	done          chan struct{}

	resourcesMu sync.Mutex
	resources   map[string]Resource
}

// NewNotificationReceiver dials the HMC's STOMP broker on host:port,
// authenticating with the session's userid and current session-id (the
// source's convention for topic subscriptions), then subscribes to every
// named topic.
func NewNotificationReceiver(session *Session, topicNames []string) (*NotificationReceiver, error) {
	if !session.IsLogon() {
		return nil, fmt.Errorf("zhmc: notification receiver requires an active session")
	}

	addr := fmt.Sprintf("%s:%d", session.Host(), session.notificationPort())
	conn, err := stomp.Dial("tcp", addr,
		stomp.ConnOpt.Login(session.userid, session.sessionIDSnapshot()),
		stomp.ConnOpt.Host(session.Host()),
	)
	if err != nil {
		return nil, &ConnectionError{Message: "connecting to notification broker " + addr, Cause: err}
	}

	r := &NotificationReceiver{
		conn:          conn,
		id:            uuid.NewString(),
		notifications: make(chan Notification, 64),
		done:          make(chan struct{}),
		resources:     make(map[string]Resource),
	}

	for _, name := range topicNames {
		sub, err := conn.Subscribe("/topic/"+name, stomp.AckAuto)
		if err != nil {
			r.Close()
			return nil, &ConnectionError{Message: "subscribing to topic " + name, Cause: err}
		}
		r.subscriptions = append(r.subscriptions, sub)
		go r.pump(sub)
	}

	return r, nil
}

// ID returns the UUID assigned to this receiver's set of subscriptions.
func (r *NotificationReceiver) ID() string { return r.id }

// Notifications returns the channel on which delivered Notifications
// arrive. It is never closed (a concurrent send-after-close would panic);
// a caller reading it in a select should also select on Done() to notice
// shutdown.
func (r *NotificationReceiver) Notifications() <-chan Notification { return r.notifications }

// Done returns a channel that is closed once Close has run, for callers
// selecting alongside Notifications().
func (r *NotificationReceiver) Done() <-chan struct{} { return r.done }

// Register associates r's URI with itself so future object-notification
// pushes naming that URI are dispatched into it via Resource.ApplyAutoUpdate.
// Registering a resource has no effect unless the resource also has
// auto-update enabled (Resource.EnableAutoUpdate).
func (r *NotificationReceiver) Register(resource Resource) {
	r.resourcesMu.Lock()
	defer r.resourcesMu.Unlock()
	r.resources[resource.URI()] = resource
}

// Unregister removes uri from the dispatch registry.
func (r *NotificationReceiver) Unregister(uri string) {
	r.resourcesMu.Lock()
	defer r.resourcesMu.Unlock()
	delete(r.resources, uri)
}

func (r *NotificationReceiver) pump(sub *stomp.Subscription) {
	for {
		select {
		case <-r.done:
			return
		case msg, ok := <-sub.C:
			if !ok {
				return
			}
			if msg.Err != nil {
				slog.Warn("zhmc: notification subscription error", "err", msg.Err)
				continue
			}
			n := Notification{Headers: map[string]string{}}
			for i := 0; i < msg.Header.Len(); i++ {
				k, v := msg.Header.GetAt(i)
				n.Headers[k] = v
			}
			if len(msg.Body) > 0 {
				_ = json.Unmarshal(msg.Body, &n.Body)
			}
			r.dispatch(n)
			select {
			case r.notifications <- n:
			case <-r.done:
				return
			}
		}
	}
}

// dispatch resolves an object-notification to a registered Resource and
// applies it via Resource.ApplyAutoUpdate. It recognizes two shapes:
//
//   - "inventory-change" with body action "delete" or "remove": the
//     resource has ceased to exist.
//   - "property-change" or "status-change" with a body "change-reports"
//     array of {"property-name": ..., "new-value": ...} objects: those
//     properties changed in place.
//
// Notifications with an unrecognized type, or naming a URI nothing has
// registered, are silently ignored.
func (r *NotificationReceiver) dispatch(n Notification) {
	uri, _ := n.Body["element-uri"].(string)
	if uri == "" {
		uri, _ = n.Body["object-uri"].(string)
	}
	if uri == "" {
		return
	}

	r.resourcesMu.Lock()
	target, ok := r.resources[uri]
	r.resourcesMu.Unlock()
	if !ok {
		return
	}

	switch n.Headers["notification-type"] {
	case "inventory-change":
		action, _ := n.Body["action"].(string)
		if action == "delete" || action == "remove" {
			target.ApplyAutoUpdate(nil, true)
		}
	case "property-change", "status-change":
		reports, _ := n.Body["change-reports"].([]any)
		if len(reports) == 0 {
			return
		}
		changed := make(map[string]any, len(reports))
		for _, raw := range reports {
			report, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			name, _ := report["property-name"].(string)
			if name == "" {
				continue
			}
			changed[name] = report["new-value"]
		}
		if len(changed) > 0 {
			target.ApplyAutoUpdate(changed, false)
		}
	}
}

// Close unsubscribes every topic, disconnects the STOMP connection, and
// signals every pump goroutine to stop via Done(). Safe to call from any
// goroutine and more than once; never closes Notifications(), so no send
// on it can ever race with a close.
func (r *NotificationReceiver) Close() error {
	var err error
	r.closeOnce.Do(func() {
		close(r.done)
		for _, sub := range r.subscriptions {
			if unsubErr := sub.Unsubscribe(); unsubErr != nil && err == nil {
				err = unsubErr
			}
		}
		if r.conn != nil {
			if discErr := r.conn.Disconnect(); discErr != nil && err == nil {
				err = discErr
			}
		}
	})
	return err
}
