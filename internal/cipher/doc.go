// Package cipher encrypts and decrypts keystore artifacts with a passphrase.
//
// The on-disk format is the one produced by `openssl enc -aes-256-cbc -a`
// without -pbkdf2, which is what older installations of the tool wrote:
//
//	base64( "Salted__" | salt[8] | AES-256-CBC(PKCS#7(plaintext)) )
//
// Key and IV come from OpenSSL's EVP_BytesToKey with a single iteration over
// the passphrase and salt. The digest used by EVP_BytesToKey was MD5 in
// OpenSSL 1.0.x and SHA256 from 1.1.0 on, so repositories exist in both
// flavours. Encryption uses MD5. Decryption tries the requested digest and
// then exactly one alternate; no other digest is ever tried.
//
// The base64 text is wrapped at 60 columns with a trailing newline. Decoding
// ignores all whitespace, so files written by openssl (64 columns) read fine.
//
// Artifacts are files with the .keystore extension anywhere below a
// workspace root; IterateArtifacts walks them lazily.
package cipher
