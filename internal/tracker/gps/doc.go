// Package gps reads NMEA 0183 from a serial GPS receiver and keeps the
// latest accepted fix.
//
// A reader goroutine owns the device and hands complete sentences to the
// scheduler through a bounded queue; Poll drains that queue without
// blocking. Sentences that arrive while the queue is full are dropped.
package gps
