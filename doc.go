// Package cask packages a directory tree into a single seekable container
// file whose per-file payloads are individually encrypted with
// AES-256-GCM.
//
// A container holds a fixed 21-byte header, a fixed-width entry table, and
// a payload region of independently decryptable nonce||ciphertext blobs:
//
//	Header:  version:u8 | file_count:u32 | total_size:u64 | data_offset:u64
//	Entry:   name:[u8;16] | path:[u8;255] | size:u64 | offset:u64
//	Payload: nonce(12) || AES-256-GCM ciphertext, one blob per entry
//
// All integers are little-endian. Containers are immutable once sealed.
//
// # Quick start
//
// Package a directory and read it back:
//
//	key, err := cask.GenerateKey()
//	if err != nil {
//	    return err
//	}
//	if err := cask.Create(ctx, "./assets", "assets.cask", key); err != nil {
//	    return err
//	}
//	archive, err := cask.Open("assets.cask", key)
//	if err != nil {
//	    return err
//	}
//	content, err := archive.ReadFile("textures/logo.png")
//
// Archives implement the [FS] storage contract alongside the pass-through
// backends in package local. Reads through one handle are safe for
// concurrent use: every read opens its own file handle and shares only the
// immutable entry index.
package cask
