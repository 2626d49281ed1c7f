package store_test

import (
	"context"
	"testing"

	"ms-booking/internal/store"
	"ms-booking/internal/store/storetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedListing(t *testing.T) *store.Store {
	t.Helper()
	s := storetest.New(t)
	ctx := context.Background()
	alice := storetest.User(t, s, "alice", false)
	bob := storetest.User(t, s, "bob", false)

	type seed struct {
		title, category, location string
		day                       int
		owner                     *string
		active                    bool
	}
	seeds := []seed{
		{"Go Meetup", "tech", "Berlin Hall", 1, &alice.ID, true},
		{"Art Fair", "art", "berlin gallery", 2, &bob.ID, true},
		{"Rust Night", "tech", "Munich", 3, &bob.ID, true},
		{"Old Summit", "tech", "Berlin Hall", 4, &alice.ID, false},
	}
	for _, sd := range seeds {
		e := storetest.Event(t, s, sd.title, storetest.At(sd.day, 9, 0), storetest.At(sd.day, 10, 0), sd.owner)
		e.Category = sd.category
		e.Location = sd.location
		e.IsActive = sd.active
		require.NoError(t, s.Queries().UpdateEvent(ctx, e))
	}
	return s
}

func titles(p *store.EventPage) []string {
	out := make([]string, 0, len(p.Events))
	for _, e := range p.Events {
		out = append(out, e.Title)
	}
	return out
}

func TestListEventsFilters(t *testing.T) {
	s := seedListing(t)
	ctx := context.Background()
	from := storetest.At(2, 0, 0)

	tests := []struct {
		name   string
		filter store.EventFilter
		want   []string
	}{
		{"active only by default sort", store.EventFilter{ActiveOnly: true}, []string{"Go Meetup", "Art Fair", "Rust Night"}},
		{"include inactive", store.EventFilter{}, []string{"Go Meetup", "Art Fair", "Rust Night", "Old Summit"}},
		{"category", store.EventFilter{ActiveOnly: true, Category: "tech"}, []string{"Go Meetup", "Rust Night"}},
		{"location is case-insensitive", store.EventFilter{ActiveOnly: true, Location: "BERLIN"}, []string{"Go Meetup", "Art Fair"}},
		{"organizer", store.EventFilter{Organizer: "ali"}, []string{"Go Meetup", "Old Summit"}},
		{"start_from", store.EventFilter{ActiveOnly: true, StartFrom: &from}, []string{"Art Fair", "Rust Night"}},
		{"sort by title desc", store.EventFilter{ActiveOnly: true, SortBy: store.SortByTitle, Descending: true}, []string{"Rust Night", "Go Meetup", "Art Fair"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := s.Queries().ListEvents(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, titles(page))
			assert.Equal(t, len(tt.want), page.Total)
		})
	}
}

func TestListEventsPagination(t *testing.T) {
	s := seedListing(t)
	ctx := context.Background()

	page, err := s.Queries().ListEvents(ctx, store.EventFilter{PerPage: 2, Page: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"Rust Night", "Old Summit"}, titles(page))
	assert.Equal(t, 4, page.Total)
	assert.Equal(t, 2, page.Pages)
	assert.Equal(t, 2, page.Page)

	page, err = s.Queries().ListEvents(ctx, store.EventFilter{PerPage: 500, Page: -3})
	require.NoError(t, err)
	assert.Equal(t, store.MaxPerPage, page.PerPage)
	assert.Equal(t, 1, page.Page)
}

func TestEventFilterNormalize(t *testing.T) {
	f := store.EventFilter{SortBy: "id; DROP TABLE events"}
	f.Normalize()
	assert.Equal(t, store.SortByStartTime, f.SortBy)
	assert.Equal(t, store.DefaultPerPage, f.PerPage)
	assert.Equal(t, 1, f.Page)
}
