// Package openai transcribes audio through an OpenAI-compatible
// /audio/transcriptions endpoint.
//
// The engine requests verbose JSON with segment and word granularities and
// folds the flat word list back into the segments that contain each word's
// start time. Device, batch size and compute type have no meaning for a
// hosted model and are ignored.
package openai
