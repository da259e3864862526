package dto

import (
	"strconv"
	"strings"

	"github.com/handiism/music-downloader/internal/model"
)

// JSONTrack represents a track from Bandcamp's JSON data.
type JSONTrack struct {
	ID        *int64       `json:"id"`
	Duration  float64      `json:"duration"`
	File      *JSONMp3File `json:"file"`
	Lyrics    string       `json:"lyrics"`
	Number    *int         `json:"track_num"`
	Title     string       `json:"title"`
	TitleLink string       `json:"title_link"`
}

// JSONMp3File represents the MP3 file info.
type JSONMp3File struct {
	URL string `json:"mp3-128"`
}

// ToTrackInput converts the track fields. Album level fields are filled
// by JSONAlbum.ToTrackInputs.
func (jt *JSONTrack) ToTrackInput(base string) model.TrackInput {
	mp3URL := jt.File.URL
	if strings.HasPrefix(mp3URL, "//") {
		mp3URL = "https:" + mp3URL
	}

	// Single track pages carry no number.
	number := 1
	if jt.Number != nil && *jt.Number > 0 {
		number = *jt.Number
	}

	var id string
	if jt.ID != nil {
		id = strconv.FormatInt(*jt.ID, 10)
	}

	var link string
	switch {
	case strings.HasPrefix(jt.TitleLink, "http"):
		link = jt.TitleLink
	case jt.TitleLink != "" && base != "":
		link = base + jt.TitleLink
	}

	return model.TrackInput{
		ID:          id,
		Name:        jt.Title,
		TrackNumber: number,
		DiscNumber:  1,
		Kind:        model.KindTrack,
		Platform:    model.PlatformBandcamp,
		ExternalURL: link,
		SourceURL:   mp3URL,
		Duration:    jt.Duration,
		Lyrics:      jt.Lyrics,
	}
}
