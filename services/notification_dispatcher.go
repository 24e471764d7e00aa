package services

import (
	"context"
	"log"
	"sync"
	"time"

	"dojocodeAPI/internal/types/notification"
)

type PushNotificationProvider interface {
	SendPush(ctx context.Context, tokens []notification.DeviceToken, title, body string, data map[string]any) error
}

// NotificationDispatcher pushes stored notifications out through the
// configured provider on a small in-memory worker pool.
type NotificationDispatcher struct {
	service      *NotificationService
	pushProvider PushNotificationProvider
	workers      int
	jobQueue     chan *notification.Notification
	stopChan     chan struct{}
	wg           sync.WaitGroup
}

func NewNotificationDispatcher(service *NotificationService) *NotificationDispatcher {
	dispatcher := &NotificationDispatcher{
		service:  service,
		workers:  5,
		jobQueue: make(chan *notification.Notification, 100),
		stopChan: make(chan struct{}),
	}

	dispatcher.startWorkers()

	return dispatcher
}

func (d *NotificationDispatcher) SetPushProvider(provider PushNotificationProvider) {
	d.pushProvider = provider
}

func (d *NotificationDispatcher) startWorkers() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
}

func (d *NotificationDispatcher) worker() {
	defer d.wg.Done()
	for {
		select {
		case notif := <-d.jobQueue:
			d.processJob(notif)
		case <-d.stopChan:
			return
		}
	}
}

// DispatchNotification queues a notification for delivery. When the queue is
// full the notification stays pending in the table; nothing blocks.
func (d *NotificationDispatcher) DispatchNotification(notif *notification.Notification) {
	select {
	case d.jobQueue <- notif:
	default:
		log.Printf("Notification queue full, leaving %s pending", notif.ID)
	}
}

func (d *NotificationDispatcher) processJob(notif *notification.Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if d.pushProvider == nil {
		// In-app only deployment; the row is still readable from the feed.
		d.service.setStatus(ctx, notif.ID, notification.StatusSent)
		return
	}

	tokens, err := d.service.getDeviceTokens(ctx, notif.UserID)
	if err != nil {
		log.Printf("Failed to load device tokens for %s: %v", notif.UserID, err)
		d.service.setStatus(ctx, notif.ID, notification.StatusFailed)
		return
	}

	if err := d.pushProvider.SendPush(ctx, tokens, notif.Title, notif.Body, notif.Data); err != nil {
		log.Printf("Push delivery failed for notification %s: %v", notif.ID, err)
		d.service.setStatus(ctx, notif.ID, notification.StatusFailed)
		return
	}

	d.service.setStatus(ctx, notif.ID, notification.StatusSent)
}

func (d *NotificationDispatcher) Stop() {
	close(d.stopChan)
	d.wg.Wait()
}
