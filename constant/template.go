// Package constant defines immutable application-level identifiers and configuration defaults.
package constant

// ChannelsTemplate is the starter channel file written by "zapper channels init".
const ChannelsTemplate = `# zapper channel registry.
# Channels are numbered in file order starting at 1.
channels:
  - name: Example News
    url: https://example.com/live/news.m3u8
    category: News
  - name: Example Sports
    url: https://example.com/live/sports.mpd
    category: Sports
    type: mpd
    drm:
      scheme: clearkey
      keys:
        0123456789abcdef0123456789abcdef: fedcba9876543210fedcba9876543210
`
