package services

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/sync/singleflight"

	"garagetracker/internal/core"
	"garagetracker/internal/gateway"
)

// ResolveRequest names the customer on an income entry.
type ResolveRequest struct {
	Name        string
	Phone       string
	VehicleMake string
	SourceNote  string
}

// CustomerResolver finds or creates the Customer behind an income entry so
// repeat visits do not produce duplicate rows.
//
// A request without a phone number never matches an existing customer: two
// walk-ins sharing a common name are different people until proven otherwise.
// Concurrent resolutions of the same (name, phone) inside this process run
// one lookup-then-create; callers waiting on it share its result, and a
// caller that gives up does not cancel it for the others. Races between
// processes are left to the store.
type CustomerResolver struct {
	gw    gateway.Gateway
	group singleflight.Group
}

func NewCustomerResolver(gw gateway.Gateway) *CustomerResolver {
	return &CustomerResolver{gw: gw}
}

// Resolve returns the ID of the earliest-created customer with exactly the
// given name and phone, creating one when none exists.
func (r *CustomerResolver) Resolve(ctx context.Context, sess gateway.Session, req ResolveRequest) (string, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Phone = strings.TrimSpace(req.Phone)
	req.VehicleMake = strings.TrimSpace(req.VehicleMake)
	if req.Name == "" {
		return "", core.Invalid("customer_name", "is required")
	}

	if req.Phone == "" {
		return r.create(ctx, sess, req)
	}

	// The shared lookup outlives any single caller; each caller stops
	// waiting when its own context ends.
	ch := r.group.DoChan(req.Name+"\x00"+req.Phone, func() (any, error) {
		return r.findOrCreate(context.WithoutCancel(ctx), sess, req)
	})
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		if res.Shared {
			slog.DebugContext(ctx, "Customer resolution shared with concurrent caller", "name", req.Name)
		}
		return res.Val.(string), nil
	}
}

func (r *CustomerResolver) findOrCreate(ctx context.Context, sess gateway.Session, req ResolveRequest) (string, error) {
	matches, err := r.gw.Customers().List(ctx, sess,
		gateway.Where(gateway.FieldName, req.Name).
			And(gateway.FieldPhone, req.Phone).
			OrderBy(gateway.FieldCreatedAt, false))
	if err != nil {
		return "", err
	}
	if len(matches) > 0 {
		if len(matches) > 1 {
			slog.WarnContext(ctx, "Duplicate customers share name and phone, using the oldest",
				"name", req.Name, "count", len(matches), "customer_id", matches[0].ID)
		}
		return matches[0].ID, nil
	}
	return r.create(ctx, sess, req)
}

func (r *CustomerResolver) create(ctx context.Context, sess gateway.Session, req ResolveRequest) (string, error) {
	c, err := r.gw.Customers().Create(ctx, sess, core.Customer{
		Name:        req.Name,
		Phone:       req.Phone,
		VehicleMake: req.VehicleMake,
		Notes:       "Source: " + req.SourceNote,
	})
	if err != nil {
		return "", err
	}
	slog.InfoContext(ctx, "Customer created", "customer_id", c.ID, "name", c.Name)
	return c.ID, nil
}
