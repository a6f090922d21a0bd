// Package action applies mask and delete decisions to matched names and
// records each one in the audit log.
//
// Masking encrypts the name with XChaCha20-Poly1305 under a fresh random key;
// the ciphertext and the key are both stored so the name can be recovered by
// whoever holds the audit log. Deleting stores no name at all and the
// placeholder core.DeletedKeyPlaceholder instead of a key.
package action
