// Package oracle verifies password candidates against an encrypted archive.
//
// Oracle answers accept or reject for one candidate and is safe for
// concurrent use. Materializer performs the single follow-up action once a
// candidate is accepted. ZipArchive implements both for AES and ZipCrypto
// protected ZIP files.
package oracle
