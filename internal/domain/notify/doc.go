// Package notify holds the desktop's transient notification banners.
package notify
