// Command marquee collects daily box-office pages, matches them against a
// movie catalog, and exports early-trajectory feature vectors.
package main
