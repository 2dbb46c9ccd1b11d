// Package lyrics turns raw timed transcription segments into the final
// line-oriented karaoke lyrics file.
//
// Processing happens in two halves. Process applies the deterministic
// cleanup pipeline (hallucination filtering, duration and length-bound
// splitting, capitalization carry-over for English, volume gating). Write
// then emits the UltraStar-style text format: a tag header, one note line
// per word with timing in quarter-beat units relative to the first note,
// separator lines between segments, and a terminal end marker. The legacy
// leading-space asymmetry in note lines is reproduced exactly for
// compatibility with existing karaoke players.
package lyrics
