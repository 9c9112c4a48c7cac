package db

import "log"

// ------------------------------
// Event System
// ------------------------------
//
// The DB emits typed events when sites are created, updated or deleted,
// and when icon references are saved or cleared. Register listeners to
// react to these changes.
//
// Example usage:
//
//	db.RegisterEventListener(db.OnSiteCreatedEvent, func(event db.Event) error {
//	    ev := event.(db.SiteCreatedEvent)
//	    log.Printf("New site created: %s - %s", ev.Site.ID, ev.Site.URL)
//	    // Optionally queue an icon download here
//	    return nil
//	})
//
// Event is the common interface for all database events.
type Event interface {
	Kind() EventKind
}

// EventKind represents all the kinds of events that can be emitted by the DB.
type EventKind int

const (
	// OnSiteCreatedEvent is emitted when a site is created.
	OnSiteCreatedEvent EventKind = iota
	// OnSiteUpdatedEvent is emitted when a site is updated.
	OnSiteUpdatedEvent
	// OnSiteDeletedEvent is emitted when a site is deleted.
	OnSiteDeletedEvent
	// OnIconSavedEvent is emitted when a site's icon reference is saved.
	OnIconSavedEvent
	// OnIconClearedEvent is emitted when a site's icon configuration is cleared.
	OnIconClearedEvent
)

func (k EventKind) String() string {
	switch k {
	case OnSiteCreatedEvent:
		return "site_created"
	case OnSiteUpdatedEvent:
		return "site_updated"
	case OnSiteDeletedEvent:
		return "site_deleted"
	case OnIconSavedEvent:
		return "icon_saved"
	case OnIconClearedEvent:
		return "icon_cleared"
	default:
		return "unknown"
	}
}

// SiteCreatedEvent is emitted after a new site is successfully inserted.
type SiteCreatedEvent struct {
	Site Site
}

func (e SiteCreatedEvent) Kind() EventKind { return OnSiteCreatedEvent }

// SiteUpdatedEvent is emitted after a site's fields are updated.
type SiteUpdatedEvent struct {
	Site Site
}

func (e SiteUpdatedEvent) Kind() EventKind { return OnSiteUpdatedEvent }

// SiteDeletedEvent is emitted after a site is deleted.
// The Site field contains the state before deletion (if available).
type SiteDeletedEvent struct {
	Site Site
}

func (e SiteDeletedEvent) Kind() EventKind { return OnSiteDeletedEvent }

// IconSavedEvent is emitted after a site's icon reference is updated.
type IconSavedEvent struct {
	SiteID string
	Icon   string
}

func (e IconSavedEvent) Kind() EventKind { return OnIconSavedEvent }

// IconClearedEvent is emitted after a site's icon configuration is
// cleared. Icon and CustomIconURL hold the references that were cleared
// so listeners can remove the backing files.
type IconClearedEvent struct {
	SiteID        string
	Icon          string
	CustomIconURL string
}

func (e IconClearedEvent) Kind() EventKind { return OnIconClearedEvent }

// EventListener is a callback that handles events of a specific kind.
type EventListener func(event Event) error

// RegisterEventListener adds a listener for a specific event kind.
// Listeners are called synchronously in registration order after the DB operation succeeds.
func (db *DB) RegisterEventListener(eventKind EventKind, listener EventListener) {
	if db.eventListeners == nil {
		db.eventListeners = make(map[EventKind][]EventListener)
	}
	db.eventListeners[eventKind] = append(db.eventListeners[eventKind], listener)
}

// emit dispatches an event to all registered listeners for that event kind.
func (db *DB) emit(event Event) {
	listeners := db.eventListeners[event.Kind()]
	for _, listener := range listeners {
		if err := listener(event); err != nil {
			log.Printf("Event listener error for %s: %v", event.Kind(), err)
		}
	}
}
