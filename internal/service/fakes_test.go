package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"startup_market/internal/events"
	"startup_market/internal/model"
	"startup_market/internal/repository"
)

type fakeUserRepo struct {
	mu     sync.Mutex
	users  map[int64]*model.User
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]*model.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return repository.ErrDuplicate
		}
	}
	r.nextID++
	u.ID = r.nextID
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id int64) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeUserRepo) UpdateProfile(_ context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, id int64, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

type fakeListingRepo struct {
	mu       sync.Mutex
	listings map[int64]model.Listing
	nextID   int64
}

func newFakeListingRepo(seed ...model.Listing) *fakeListingRepo {
	r := &fakeListingRepo{listings: make(map[int64]model.Listing)}
	for _, l := range seed {
		r.listings[l.ID] = l.Clone()
		r.nextID = max(r.nextID, l.ID)
	}
	return r
}

func (r *fakeListingRepo) Create(_ context.Context, l *model.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	l.ID = r.nextID
	r.listings[l.ID] = l.Clone()
	return nil
}

func (r *fakeListingRepo) FindByID(_ context.Context, id int64) (*model.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.listings[id]; ok {
		cp := l.Clone()
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeListingRepo) FindAll(_ context.Context, status *string) ([]model.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []model.Listing{}
	for id := int64(1); id <= r.nextID; id++ {
		l, ok := r.listings[id]
		if ok && (status == nil || l.Status == *status) {
			out = append(out, l.Clone())
		}
	}
	return out, nil
}

func (r *fakeListingRepo) FindBySeller(_ context.Context, sellerID int64) ([]model.Listing, error) {
	all, _ := r.FindAll(context.Background(), nil)
	out := []model.Listing{}
	for _, l := range all {
		if l.SellerID == sellerID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *fakeListingRepo) Update(_ context.Context, l *model.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.listings[l.ID]
	if !ok || existing.SellerID != l.SellerID {
		return repository.ErrNotFound
	}
	r.listings[l.ID] = l.Clone()
	return nil
}

func (r *fakeListingRepo) UpdateStatus(_ context.Context, id int64, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.listings[id]
	if !ok {
		return repository.ErrNotFound
	}
	l.Status = status
	r.listings[id] = l
	return nil
}

func (r *fakeListingRepo) IncrementViews(_ context.Context, id int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.listings[id]
	if !ok || l.Status != model.ListingStatusApproved {
		return 0, fmt.Errorf("listing view: %w", repository.ErrNotFound)
	}
	l.Views++
	r.listings[id] = l
	return l.Views, nil
}

func (r *fakeListingRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.listings[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.listings, id)
	return nil
}

func (r *fakeListingRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.listings)), nil
}

func (r *fakeListingRepo) Stats(_ context.Context) (*model.MarketStats, error) {
	return &model.MarketStats{}, nil
}

type fakeOfferRepo struct {
	mu       sync.Mutex
	offers   []model.Offer
	listings *fakeListingRepo
	// keyMisses makes that many idempotency lookups miss, as when a retry
	// races the original request
	keyMisses int
}

func (r *fakeOfferRepo) Create(_ context.Context, o *model.Offer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o.IdempotencyKey != nil {
		for _, existing := range r.offers {
			if existing.BuyerID == o.BuyerID && existing.IdempotencyKey != nil && *existing.IdempotencyKey == *o.IdempotencyKey {
				return fmt.Errorf("offer idempotency key already used: %w", repository.ErrDuplicate)
			}
		}
	}
	o.ID = int64(len(r.offers) + 1)
	o.CreatedAt = time.Now()
	o.UpdatedAt = o.CreatedAt
	r.offers = append(r.offers, *o)
	return nil
}

func (r *fakeOfferRepo) FindByID(_ context.Context, id int64) (*model.Offer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.offers {
		if o.ID == id {
			cp := o
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeOfferRepo) FindByIdempotencyKey(_ context.Context, buyerID int64, key string) (*model.Offer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.keyMisses > 0 {
		r.keyMisses--
		return nil, nil
	}
	for _, o := range r.offers {
		if o.BuyerID == buyerID && o.IdempotencyKey != nil && *o.IdempotencyKey == key {
			cp := o
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeOfferRepo) Find(ctx context.Context, f model.OfferFilters) ([]model.Offer, error) {
	r.mu.Lock()
	all := append([]model.Offer(nil), r.offers...)
	r.mu.Unlock()

	out := []model.Offer{}
	for _, o := range all {
		if f.BuyerID != nil && o.BuyerID != *f.BuyerID {
			continue
		}
		if f.ListingID != nil && o.ListingID != *f.ListingID {
			continue
		}
		if f.Status != nil && o.Status != *f.Status {
			continue
		}
		if f.SellerID != nil {
			l, _ := r.listings.FindByID(ctx, o.ListingID)
			if l == nil || l.SellerID != *f.SellerID {
				continue
			}
		}
		out = append(out, o)
	}
	return out, nil
}

func (r *fakeOfferRepo) UpdateStatus(_ context.Context, id int64, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.offers {
		if r.offers[i].ID == id {
			if r.offers[i].Status != model.OfferStatusPending {
				return fmt.Errorf("offer status update: %w", repository.ErrNotPending)
			}
			r.offers[i].Status = status
			return nil
		}
	}
	return fmt.Errorf("offer status update: %w", repository.ErrNotPending)
}

func (r *fakeOfferRepo) UpdateTerms(_ context.Context, o *model.Offer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.offers {
		stored := &r.offers[i]
		if stored.ID == o.ID && stored.BuyerID == o.BuyerID && stored.Status == model.OfferStatusPending {
			stored.Amount = o.Amount
			stored.Message = o.Message
			stored.Timeline = o.Timeline
			stored.FinancingType = o.FinancingType
			stored.ExpiresAt = o.ExpiresAt
			stored.UpdatedAt = time.Now()
			o.UpdatedAt = stored.UpdatedAt
			return nil
		}
	}
	return fmt.Errorf("offer terms update: %w", repository.ErrNotPending)
}

// setStatus changes an offer behind the service's back
func (r *fakeOfferRepo) setStatus(id int64, status string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.offers {
		if r.offers[i].ID == id {
			r.offers[i].Status = status
		}
	}
}

func (r *fakeOfferRepo) Count(ctx context.Context, f model.OfferFilters) (int64, error) {
	offers, err := r.Find(ctx, f)
	return int64(len(offers)), err
}

type fakeSavedRepo struct {
	mu    sync.Mutex
	saved map[[2]int64]model.SavedListing
}

func newFakeSavedRepo() *fakeSavedRepo {
	return &fakeSavedRepo{saved: make(map[[2]int64]model.SavedListing)}
}

func (r *fakeSavedRepo) Save(_ context.Context, s *model.SavedListing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s.SavedAt = time.Now()
	r.saved[[2]int64{s.BuyerID, s.ListingID}] = *s
	return nil
}

func (r *fakeSavedRepo) UpdateNotes(_ context.Context, buyerID, listingID int64, notes string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := [2]int64{buyerID, listingID}
	s, ok := r.saved[key]
	if !ok {
		return fmt.Errorf("saved listing notes update: %w", repository.ErrNotFound)
	}
	s.Notes = notes
	r.saved[key] = s
	return nil
}

func (r *fakeSavedRepo) Remove(_ context.Context, buyerID, listingID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := [2]int64{buyerID, listingID}
	if _, ok := r.saved[key]; !ok {
		return fmt.Errorf("saved listing deletion: %w", repository.ErrNotFound)
	}
	delete(r.saved, key)
	return nil
}

func (r *fakeSavedRepo) FindByBuyer(_ context.Context, buyerID int64) ([]model.SavedListing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []model.SavedListing{}
	for k, s := range r.saved {
		if k[0] == buyerID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeSavedRepo) CountByBuyer(ctx context.Context, buyerID int64) (int64, error) {
	saved, err := r.FindByBuyer(ctx, buyerID)
	return int64(len(saved)), err
}

type fakeMessageRepo struct {
	mu       sync.Mutex
	messages []model.Message
}

func (r *fakeMessageRepo) Create(_ context.Context, m *model.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m.ID = int64(len(r.messages) + 1)
	m.CreatedAt = time.Now()
	r.messages = append(r.messages, *m)
	return nil
}

func (r *fakeMessageRepo) FindConversation(_ context.Context, listingID, a, b int64) ([]model.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []model.Message{}
	for _, m := range r.messages {
		if m.ListingID == listingID && ((m.SenderID == a && m.RecipientID == b) || (m.SenderID == b && m.RecipientID == a)) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMessageRepo) FindConversations(_ context.Context, userID int64) ([]model.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	type thread struct{ listingID, otherID int64 }
	index := map[thread]int{}
	out := []model.Conversation{}
	for i := len(r.messages) - 1; i >= 0; i-- {
		m := r.messages[i]
		var other int64
		switch userID {
		case m.SenderID:
			other = m.RecipientID
		case m.RecipientID:
			other = m.SenderID
		default:
			continue
		}
		key := thread{m.ListingID, other}
		pos, seen := index[key]
		if !seen {
			pos = len(out)
			index[key] = pos
			out = append(out, model.Conversation{
				ListingID:       m.ListingID,
				Participant:     model.Participant{ID: other},
				LastMessage:     m.Content,
				LastMessageTime: m.CreatedAt,
			})
		}
		if m.RecipientID == userID && !m.Read {
			out[pos].UnreadCount++
		}
	}
	return out, nil
}

func (r *fakeMessageRepo) CountUnread(_ context.Context, recipientID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, m := range r.messages {
		if m.RecipientID == recipientID && !m.Read {
			n++
		}
	}
	return n, nil
}

func (r *fakeMessageRepo) MarkRead(_ context.Context, id, recipientID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.messages {
		if r.messages[i].ID == id && r.messages[i].RecipientID == recipientID {
			r.messages[i].Read = true
			return nil
		}
	}
	return fmt.Errorf("message for recipient: %w", repository.ErrNotFound)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}
