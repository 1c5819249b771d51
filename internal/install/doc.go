// Package install copies decrypted keystores into an Android project and
// writes the keystore.properties file its Gradle build reads.
package install
