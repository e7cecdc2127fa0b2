// Package sending runs the campaign send pipeline: resolve the audience,
// personalize one message per deliverable recipient, dispatch through the
// email provider, and record the outcome on the campaign in a single
// final update.
//
// A campaign send is guarded twice against double delivery: a distributed
// lock keyed on the campaign id, and a compare-and-swap status transition
// from draft to sending. Either guard failing aborts before any provider
// call is made.
//
// Dispatch strategy is decided once per send. Immediate campaigns without
// attachments go through the provider batch endpoint in chunks of at most
// 100 messages, sequentially; scheduled campaigns and campaigns with
// attachments fall back to concurrent unitary sends, because the batch
// endpoint supports neither. A failed batch chunk is logged and skipped,
// later chunks still run. The recorded sent count only includes
// provider-acknowledged messages.
package sending
