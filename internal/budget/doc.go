// Package budget tracks how much content a scan may send for analysis and
// how long to back off when the analysis provider rate limits the scan.
package budget
