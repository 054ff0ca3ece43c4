// Package result decodes columnar response envelopes into typed sequences.
//
// Each column definition names a column and points, by id, at a column
// field containing a raw little-endian buffer. Fixed-width buffers are
// split into equal-width elements; varchar buffers hold length-prefixed
// UTF-8 runs:
//
//	resp, _ := wire.UnmarshalResponse(data)
//	res, err := result.Decode(resp)
//	counts, err := result.Get[int32](res, "count")
//
// The Encoder performs the inverse and is used by engines that produce
// responses. Results convert to Arrow records with Record.
package result
