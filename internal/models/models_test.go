package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSessionDefaults_WithFallbacks(t *testing.T) {
	got := SessionDefaults{}.WithFallbacks()
	assert.Equal(t, DefaultTeamMembers, got.TeamMembers)
	assert.Equal(t, len(DefaultTeamMembers), got.TeamSize)
	assert.Equal(t, DefaultLocation, got.DefaultLocation)

	kept := SessionDefaults{TeamMembers: []string{"a@x.io"}, TeamSize: 9, DefaultLocation: "Pune"}.WithFallbacks()
	assert.Equal(t, []string{"a@x.io"}, kept.TeamMembers)
	assert.Equal(t, 9, kept.TeamSize)
	assert.Equal(t, "Pune", kept.DefaultLocation)
}

func TestSessionDefaults_Merge(t *testing.T) {
	base := SessionDefaults{TeamMembers: []string{"a@x.io", "b@x.io", "c@x.io"}, TeamSize: 3, DefaultLocation: "Hyderabad"}

	tests := []struct {
		name     string
		override *SessionDefaults
		want     SessionDefaults
	}{
		{name: "nil override", override: nil, want: base},
		{
			name:     "roster replaces size",
			override: &SessionDefaults{TeamMembers: []string{"z@x.io"}},
			want:     SessionDefaults{TeamMembers: []string{"z@x.io"}, TeamSize: 1, DefaultLocation: "Hyderabad"},
		},
		{
			name:     "explicit size wins over roster",
			override: &SessionDefaults{TeamMembers: []string{"z@x.io"}, TeamSize: 8},
			want:     SessionDefaults{TeamMembers: []string{"z@x.io"}, TeamSize: 8, DefaultLocation: "Hyderabad"},
		},
		{
			name:     "location only",
			override: &SessionDefaults{DefaultLocation: "Mumbai"},
			want:     SessionDefaults{TeamMembers: base.TeamMembers, TeamSize: 3, DefaultLocation: "Mumbai"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, base.Merge(tt.override))
		})
	}
}

func TestAvailabilityWindow_BestSlot(t *testing.T) {
	_, ok := AvailabilityWindow{Date: "2026-10-20"}.BestSlot()
	assert.False(t, ok)

	w := AvailabilityWindow{Date: "2026-10-20", TimeSlots: []TimeSlot{
		{Time: "18:00", AvailableAttendees: 4, TotalAttendees: 6},
		{Time: "19:00", AvailableAttendees: 6, TotalAttendees: 6},
		{Time: "20:00", AvailableAttendees: 6, TotalAttendees: 6},
	}}
	best, ok := w.BestSlot()
	assert.True(t, ok)
	assert.Equal(t, "19:00", best.Time)
	assert.InDelta(t, 1.0, best.Ratio(), 1e-9)
	assert.Zero(t, TimeSlot{}.Ratio())
}

func TestOption_Keys(t *testing.T) {
	o := Option{Restaurant: RestaurantCandidate{Name: "  Paradise Biryani "}, Date: "2026-10-20", AvailableAttendees: 3, TotalAttendees: 6}
	assert.Equal(t, "paradise biryani|2026-10-20", o.CombinationKey())
	assert.InDelta(t, 0.5, o.AvailabilityRatio(), 1e-9)
	assert.Zero(t, Option{}.AvailabilityRatio())
}

func TestRestaurantCandidate(t *testing.T) {
	r := RestaurantCandidate{Name: "Chutneys", Cuisines: []string{"South Indian", " Vegetarian"}, OpenNow: BoolPtr(true)}
	assert.True(t, r.HasCuisine("south indian"))
	assert.True(t, r.HasCuisine("vegetarian"))
	assert.False(t, r.HasCuisine("italian"))
	assert.True(t, r.IsOpenNow())
	assert.False(t, RestaurantCandidate{}.IsOpenNow())
}

func TestIntent_Valid(t *testing.T) {
	for _, i := range AllIntents {
		assert.True(t, i.Valid(), i)
	}
	assert.False(t, Intent("WEATHER").Valid())
}
