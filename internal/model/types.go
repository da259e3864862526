package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidFormat is returned when an output format is not recognized.
	ErrInvalidFormat = errors.New("invalid audio format")

	// ErrInvalidQuality is returned when a quality value is not recognized.
	ErrInvalidQuality = errors.New("invalid audio quality")

	// ErrInvalidQueryType is returned when a query type is not recognized.
	ErrInvalidQueryType = errors.New("invalid query type")

	// ErrInvalidPlaylistFormat is returned when a playlist format is not recognized.
	ErrInvalidPlaylistFormat = errors.New("invalid playlist format")
)

// Kind distinguishes songs from podcast episodes.
type Kind int

const (
	KindTrack Kind = iota
	KindEpisode
)

func (k Kind) String() string {
	if k == KindEpisode {
		return "episode"
	}
	return "track"
}

// Platform is the catalog a track was resolved from.
type Platform string

const (
	PlatformUnknown  Platform = "unknown"
	PlatformSpotify  Platform = "spotify"
	PlatformBandcamp Platform = "bandcamp"
)

// QueryType is the kind of object a search query resolves to.
type QueryType string

const (
	QueryTrack    QueryType = "track"
	QueryAlbum    QueryType = "album"
	QueryPlaylist QueryType = "playlist"
	QueryArtist   QueryType = "artist"
	QueryEpisode  QueryType = "episode"
	QueryShow     QueryType = "show"
)

// QueryTypes lists every query type in display order.
var QueryTypes = []QueryType{QueryTrack, QueryAlbum, QueryPlaylist, QueryArtist, QueryEpisode, QueryShow}

// ParseQueryType parses a query type name, case-insensitively.
func ParseQueryType(s string) (QueryType, error) {
	q := QueryType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range QueryTypes {
		if q == known {
			return q, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidQueryType, s)
}

// Format is an output audio format.
type Format string

const (
	FormatMP3    Format = "mp3"
	FormatAAC    Format = "aac"
	FormatFLAC   Format = "flac"
	FormatM4A    Format = "m4a"
	FormatOpus   Format = "opus"
	FormatVorbis Format = "vorbis"
	FormatWAV    Format = "wav"
)

// Formats lists every supported output format.
var Formats = []Format{FormatMP3, FormatAAC, FormatFLAC, FormatM4A, FormatOpus, FormatVorbis, FormatWAV}

// ParseFormat parses a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidFormat, s)
}

// Extension returns the file extension, including the leading dot.
func (f Format) Extension() string {
	switch f {
	case FormatAAC:
		return ".m4a"
	case FormatVorbis:
		return ".ogg"
	case "":
		return ".mp3"
	default:
		return "." + string(f)
	}
}

// SupportsCoverArt reports whether an image stream can be muxed into the
// container as an attached picture.
func (f Format) SupportsCoverArt() bool {
	switch f {
	case FormatMP3, FormatM4A, FormatAAC, FormatFLAC:
		return true
	default:
		return false
	}
}

// Quality is the transcode bitrate passed to the extraction tool.
type Quality string

const (
	QualityBest  Quality = "0"
	QualityQ320K Quality = "320K"
	QualityQ256K Quality = "256K"
	QualityQ192K Quality = "192K"
	QualityQ128K Quality = "128K"
	QualityQ96K  Quality = "96K"
	QualityQ32K  Quality = "32K"
	QualityWorst Quality = "9"
)

var qualityNames = map[string]Quality{
	"best":  QualityBest,
	"320":   QualityQ320K,
	"256":   QualityQ256K,
	"192":   QualityQ192K,
	"128":   QualityQ128K,
	"96":    QualityQ96K,
	"32":    QualityQ32K,
	"worst": QualityWorst,
}

// ParseQuality accepts "best", "worst" or a bitrate such as "320" or "320k".
func ParseQuality(s string) (Quality, error) {
	name := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "k")
	if q, ok := qualityNames[name]; ok {
		return q, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidQuality, s)
}

// PlaylistFormat represents supported playlist file formats.
type PlaylistFormat int

const (
	// PlaylistFormatM3U is the M3U playlist format.
	PlaylistFormatM3U PlaylistFormat = iota
	// PlaylistFormatPLS is the PLS playlist format.
	PlaylistFormatPLS
	// PlaylistFormatWPL is the Windows Media Player playlist format.
	PlaylistFormatWPL
	// PlaylistFormatZPL is the Zune playlist format.
	PlaylistFormatZPL
)

// ParsePlaylistFormat parses "m3u", "pls", "wpl" or "zpl".
func ParsePlaylistFormat(s string) (PlaylistFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "m3u", "":
		return PlaylistFormatM3U, nil
	case "pls":
		return PlaylistFormatPLS, nil
	case "wpl":
		return PlaylistFormatWPL, nil
	case "zpl":
		return PlaylistFormatZPL, nil
	}
	return PlaylistFormatM3U, fmt.Errorf("%w: %q", ErrInvalidPlaylistFormat, s)
}

// Extension returns the file extension for the playlist format.
func (pf PlaylistFormat) Extension() string {
	switch pf {
	case PlaylistFormatPLS:
		return ".pls"
	case PlaylistFormatWPL:
		return ".wpl"
	case PlaylistFormatZPL:
		return ".zpl"
	default:
		return ".m3u"
	}
}

func (pf PlaylistFormat) String() string {
	return strings.TrimPrefix(pf.Extension(), ".")
}
