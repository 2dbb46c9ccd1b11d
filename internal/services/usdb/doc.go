// Package usdb implements the authenticated client for the UltraStar song
// database: session login, tagged song-text download by numeric id, cover
// download, and header tag parsing (including the embedded #VIDEO:v=
// sharing-site reference acquisition relies on).
package usdb
