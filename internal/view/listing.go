package view

import (
	"fmt"

	"github.com/malonaz/carscout/internal/agent"
)

// NoResultsText replaces the card list when a search returns no listings.
const NoResultsText = "No listings found. Try adjusting your search criteria."

// ListingCard is the display form of a listing.
type ListingCard struct {
	// Index is 1-based.
	Index    int
	Title    string
	Price    string
	Mileage  string
	Location string
	Source   string
	// URL is empty unless Linked is true.
	URL    string
	Linked bool
}

// NewListingCard builds the card for the listing at the given 1-based index.
func NewListingCard(index int, listing *agent.Listing) ListingCard {
	card := ListingCard{
		Index:    index,
		Title:    listing.Title,
		Price:    listing.Price,
		Mileage:  listing.Mileage,
		Location: listing.Location,
		Source:   listing.Source,
	}
	if listing.HasLink() {
		card.URL = listing.URL
		card.Linked = true
	}
	return card
}

// Cards builds cards in listing order. Nil listings are skipped.
func Cards(listings []*agent.Listing) []ListingCard {
	cards := make([]ListingCard, 0, len(listings))
	for _, listing := range listings {
		if listing == nil {
			continue
		}
		cards = append(cards, NewListingCard(len(cards)+1, listing))
	}
	return cards
}

// CountLabel returns "Found N car listing(s)", singular only for exactly one.
func CountLabel(n int) string {
	noun := "car listings"
	if n == 1 {
		noun = "car listing"
	}
	return fmt.Sprintf("Found %d %s", n, noun)
}
