// Package persistence provides file-backed byte sources and sinks for bitstream.
package persistence

// OwnerReadWriteExec is a standard owner read / write / exec file permission.
const OwnerReadWriteExec = 0o700

// OwnerReadWrite is a standard owner read / write file permission.
const OwnerReadWrite = 0o600
