package sse

import (
	"time"

	"github.com/GTDGit/gtd_catalog/internal/variant"
)

// IntegrityNotifier is the interface services use to report catalog defects.
type IntegrityNotifier interface {
	NotifyResolutionDefect(productID int, sel variant.Selection, defect error)
	NotifyCatalogInvalid(productID int, err error)
}

// HubNotifier implements IntegrityNotifier using the SSE Hub.
type HubNotifier struct {
	hub *Hub
}

// NewHubNotifier creates a notifier backed by the given Hub.
func NewHubNotifier(hub *Hub) *HubNotifier {
	return &HubNotifier{hub: hub}
}

func (n *HubNotifier) NotifyResolutionDefect(productID int, sel variant.Selection, defect error) {
	if n.hub.ClientCount() == 0 {
		return
	}
	n.hub.Broadcast(&IntegrityEvent{
		Event:     EventResolutionDefect,
		ProductID: productID,
		Defect:    defect.Error(),
		Selection: sel,
		Timestamp: time.Now(),
	})
}

func (n *HubNotifier) NotifyCatalogInvalid(productID int, err error) {
	if n.hub.ClientCount() == 0 {
		return
	}
	var details []string
	for _, ce := range variant.CatalogErrors(err) {
		details = append(details, ce.Error())
	}
	if len(details) == 0 && err != nil {
		details = []string{err.Error()}
	}
	n.hub.Broadcast(&IntegrityEvent{
		Event:     EventCatalogInvalid,
		ProductID: productID,
		Defect:    "CATALOG_INCONSISTENT",
		Details:   details,
		Timestamp: time.Now(),
	})
}

// NopNotifier is a no-op implementation for when SSE is not needed.
type NopNotifier struct{}

func (NopNotifier) NotifyResolutionDefect(int, variant.Selection, error) {}
func (NopNotifier) NotifyCatalogInvalid(int, error)                      {}
