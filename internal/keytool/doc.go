// Package keytool wraps the JDK keytool binary used to create and re-key
// Android signing keystores.
//
// Passphrases are handed to keytool through environment variables
// (-storepass:env and friends) so they never show up in the process list or
// in logged command lines.
package keytool
