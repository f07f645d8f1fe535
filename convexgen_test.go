package convexgen_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/convexgen"
)

const e2eSchema = `
import { defineSchema, defineTable } from "convex/server";
import { v } from "convex/values";

const event = v.union(
  v.object({ type: v.literal("join"), channel: v.string() }),
  v.object({ type: v.literal("leave") }),
);

export default defineSchema({
  events: defineTable({
    payload: event,
    at: v.int64(),
    note: v.optional(v.string()),
  }).index("by_at", ["at"]),
});
`

const e2eFunctions = `
import { query, mutation, internalMutation, action } from "./_generated/server";
import { v } from "convex/values";

export const record = mutation({
  args: { at: v.int64(), note: v.optional(v.string()) },
  returns: v.union(
    v.object({ Ok: v.id("events") }),
    v.object({ Err: v.object({ reason: v.string() }) }),
  ),
  handler: async () => {},
});

export const latest = query({
  args: {},
  returns: v.union(v.object({ at: v.int64() }), v.null()),
  handler: async () => {},
});

export const purge = internalMutation({
  args: { before: v.int64() },
  handler: async () => {},
});

export const replay = action({
  args: { speed: v.union(v.literal("slow"), v.literal("fast")) },
  handler: async () => {},
});
`

func generateFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	schemaPath := filepath.Join(dir, "schema.ts")
	fnPath := filepath.Join(dir, "events.ts")
	require.NoError(t, os.WriteFile(schemaPath, []byte(e2eSchema), 0o644))
	require.NoError(t, os.WriteFile(fnPath, []byte(e2eFunctions), 0o644))

	cfg := &convexgen.Config{
		SchemaPath:    schemaPath,
		FunctionPaths: []string{fnPath},
		OutFile:       filepath.Join(dir, "api", "client.go"),
	}
	require.NoError(t, convexgen.Generate(context.Background(), cfg))

	out, err := os.ReadFile(cfg.OutFile)
	require.NoError(t, err)
	return string(out)
}

func TestGenerateEndToEnd(t *testing.T) {
	src := generateFixture(t)

	assert.Contains(t, src, "// Code generated by convexgen. DO NOT EDIT.")

	// The tagged union column becomes a discriminated wrapper with one
	// struct per arm.
	assert.Contains(t, src, "type EventsPayloadJoin struct {")
	assert.Contains(t, src, "type EventsPayloadLeave struct{}")
	assert.Contains(t, src, "type EventsPayload struct {")
	assert.Contains(t, src, `marshalTagged("join"`)

	// Result-shaped returns use the generic helper.
	assert.Contains(t, src, "Result[string, EventsRecordResultErr]")
	assert.Contains(t, src, "type Result[T any, E any] struct {")

	// A nullable return collapses to a pointer.
	assert.Contains(t, src, "func (c *Client) EventsLatest(ctx context.Context) (*EventsLatestResult, error) {")
	assert.Contains(t, src, "func (c *Client) EventsLatestSubscribe(ctx context.Context) (*TypedSubscription[*EventsLatestResult], error) {")

	// Internal functions keep their invocation path and route.
	assert.Contains(t, src, `const EventsPurgePath = "events:purge"`)
	assert.Contains(t, src, "c.caller.Mutation(ctx, EventsPurgePath, m)")

	// Enum arguments convert through the reflective bridge.
	assert.Contains(t, src, "type EventsReplaySpeed string")
	assert.Contains(t, src, `EventsReplaySpeedSlow EventsReplaySpeed = "slow"`)
	assert.Contains(t, src, "c.caller.Action(ctx, EventsReplayPath, m)")
}

func TestGenerateRerunsAreIdentical(t *testing.T) {
	dir := t.TempDir()
	schemaPath := filepath.Join(dir, "schema.ts")
	fnPath := filepath.Join(dir, "events.ts")
	require.NoError(t, os.WriteFile(schemaPath, []byte(e2eSchema), 0o644))
	require.NoError(t, os.WriteFile(fnPath, []byte(e2eFunctions), 0o644))

	cfg := &convexgen.Config{
		SchemaPath:    schemaPath,
		FunctionPaths: []string{fnPath},
		OutFile:       filepath.Join(dir, "api", "client.go"),
		Parser:        convexgen.NewCachingParser(nil),
	}
	require.NoError(t, convexgen.Generate(context.Background(), cfg))
	first, err := os.ReadFile(cfg.OutFile)
	require.NoError(t, err)

	// The second run hits the parse cache and must produce the same bytes.
	require.NoError(t, convexgen.Generate(context.Background(), cfg))
	second, err := os.ReadFile(cfg.OutFile)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}
