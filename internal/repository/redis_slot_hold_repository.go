package repository

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Aswindil12/algus-turf/internal/domain"
	pkgredis "github.com/Aswindil12/algus-turf/pkg/redis"
	"github.com/Aswindil12/algus-turf/pkg/telemetry"
)

//go:embed scripts/hold_slots.lua
var holdSlotsScript string

//go:embed scripts/release_slots.lua
var releaseSlotsScript string

// Script names for caching
const (
	scriptHoldSlots    = "hold_slots"
	scriptReleaseSlots = "release_slots"
)

// RedisSlotHoldRepository implements SlotHoldRepository using Redis
type RedisSlotHoldRepository struct {
	client      *pkgredis.Client
	sharedField bool
}

// NewRedisSlotHoldRepository creates a new RedisSlotHoldRepository
func NewRedisSlotHoldRepository(client *pkgredis.Client, sharedField bool) *RedisSlotHoldRepository {
	return &RedisSlotHoldRepository{client: client, sharedField: sharedField}
}

// LoadScripts loads all Lua scripts into Redis
func (r *RedisSlotHoldRepository) LoadScripts(ctx context.Context) error {
	scripts := map[string]string{
		scriptHoldSlots:    holdSlotsScript,
		scriptReleaseSlots: releaseSlotsScript,
	}

	for name, script := range scripts {
		if _, err := r.client.LoadScript(ctx, name, script); err != nil {
			return fmt.Errorf("failed to load script %s: %w", name, err)
		}
	}

	return nil
}

// HoldSlots atomically holds all requested slots or none of them
func (r *RedisSlotHoldRepository) HoldSlots(ctx context.Context, params HoldParams) (*HoldResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.redis.slot_hold.hold")
	defer span.End()

	span.SetAttributes(
		attribute.String("booking_id", params.BookingID),
		attribute.String("date", params.Date),
		attribute.String("turf_type", params.TurfType),
		attribute.Int("slot_count", len(params.Slots)),
	)

	keys := make([]string, 0, len(params.Slots))
	args := make([]interface{}, 0, len(params.Slots)+2)
	args = append(args, params.BookingID, params.TTLSeconds)
	for _, slot := range params.Slots {
		keys = append(keys, r.holdKey(params.Date, params.TurfType, slot))
		args = append(args, slot)
	}

	result := r.client.EvalScript(ctx, scriptHoldSlots, holdSlotsScript, keys, args...)
	if result.Err() != nil {
		span.RecordError(result.Err())
		span.SetStatus(codes.Error, result.Err().Error())
		return nil, fmt.Errorf("failed to execute hold_slots script: %w", result.Err())
	}

	values, err := result.Slice()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to parse script result: %w", err)
	}

	if len(values) == 0 {
		span.SetStatus(codes.Error, "empty result")
		return nil, fmt.Errorf("unexpected script result length: %d", len(values))
	}

	success, _ := toInt64(values[0])
	if success == 1 {
		span.SetStatus(codes.Ok, "")
		return &HoldResult{
			Success:   true,
			ExpiresAt: time.Now().Add(time.Duration(params.TTLSeconds) * time.Second),
		}, nil
	}

	conflictSlot := ""
	if len(values) > 1 {
		conflictSlot, _ = values[1].(string)
	}
	span.SetAttributes(attribute.String("conflict_slot", conflictSlot))
	span.SetStatus(codes.Error, "slot held")
	return &HoldResult{Success: false, ConflictSlot: conflictSlot}, nil
}

// ReleaseSlots drops the holds owned by the given booking
func (r *RedisSlotHoldRepository) ReleaseSlots(ctx context.Context, params HoldParams) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.redis.slot_hold.release")
	defer span.End()

	span.SetAttributes(
		attribute.String("booking_id", params.BookingID),
		attribute.String("date", params.Date),
	)

	keys := make([]string, 0, len(params.Slots))
	for _, slot := range params.Slots {
		keys = append(keys, r.holdKey(params.Date, params.TurfType, slot))
	}

	result := r.client.EvalScript(ctx, scriptReleaseSlots, releaseSlotsScript, keys, params.BookingID)
	if result.Err() != nil {
		span.RecordError(result.Err())
		span.SetStatus(codes.Error, result.Err().Error())
		return fmt.Errorf("failed to execute release_slots script: %w", result.Err())
	}

	released, _ := result.Int64()
	span.SetAttributes(attribute.Int64("released", released))
	span.SetStatus(codes.Ok, "")
	return nil
}

// HeldSlots returns the currently held slots for a date and turf type
func (r *RedisSlotHoldRepository) HeldSlots(ctx context.Context, date, turfType string) ([]string, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.redis.slot_hold.held")
	defer span.End()

	span.SetAttributes(attribute.String("date", date), attribute.String("turf_type", turfType))

	scopes := []string{turfType}
	if r.sharedField {
		scopes = []string{"field"}
	} else if turfType == "" {
		// No filter: a hold under any turf scope counts
		scopes = scopes[:0]
		for _, t := range domain.TurfTypes() {
			scopes = append(scopes, t.String())
		}
	}

	grid := domain.SlotGrid()
	keys := make([]string, 0, len(grid)*len(scopes))
	for _, scope := range scopes {
		for _, slot := range grid {
			keys = append(keys, fmt.Sprintf("hold:%s:%s:%s", date, scope, slot))
		}
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to read slot holds: %w", err)
	}

	seen := make(map[string]bool, domain.SlotCount)
	var held []string
	for i, v := range values {
		if v == nil {
			continue
		}
		slot := grid[i%len(grid)]
		if !seen[slot] {
			seen[slot] = true
			held = append(held, slot)
		}
	}

	span.SetAttributes(attribute.Int("held_count", len(held)))
	span.SetStatus(codes.Ok, "")
	return held, nil
}

func (r *RedisSlotHoldRepository) holdKey(date, turfType, slot string) string {
	scope := turfType
	if r.sharedField {
		scope = "field"
	}
	return fmt.Sprintf("hold:%s:%s:%s", date, scope, slot)
}

func toInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	}
	return 0, false
}
