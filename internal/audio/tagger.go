package audio

import (
	"fmt"

	"github.com/bogem/id3v2"
	"github.com/handiism/music-downloader/internal/model"
)

// CatalogIDDescription is the TXXX description holding the catalog id.
const CatalogIDDescription = "Catalog ID"

// Tagger adds ID3 frames that the transcoding step cannot write.
//
// The extraction tool already stores title, album, date, artists, disc
// and track number. Tagger complements them on MP3 files with:
//   - TPE2 album artist (primary artist)
//   - WOAS source page (the track's external link)
//   - TXXX "Catalog ID" (the catalog identifier)
//   - USLT lyrics, when the track has some
//
// Example:
//
//	tagger := NewTagger()
//	if err := tagger.Annotate(path, track); err != nil {
//	    logger.Warn("tagging failed", "path", path, "err", err)
//	}
type Tagger struct{}

// NewTagger creates a new Tagger.
func NewTagger() *Tagger {
	return &Tagger{}
}

// Annotate writes the complementary frames to the MP3 file at path.
//
// Existing frames with the same ids are replaced, other frames (including
// attached pictures) are preserved.
func (t *Tagger) Annotate(path string, track *model.Track) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("open tags of %s: %w", path, err)
	}
	defer tag.Close()

	enc := textEncoding(tag)

	tag.DeleteFrames("TPE2")
	tag.AddTextFrame("TPE2", enc, track.PrimaryArtist())

	tag.DeleteFrames("WOAS")
	if track.ExternalURL != "" {
		tag.AddFrame("WOAS", id3v2.UnknownFrame{Body: []byte(track.ExternalURL)})
	}

	tag.DeleteFrames("TXXX")
	tag.AddUserDefinedTextFrame(id3v2.UserDefinedTextFrame{
		Encoding:    enc,
		Description: CatalogIDDescription,
		Value:       track.ID,
	})

	if track.Lyrics != "" {
		tag.DeleteFrames(tag.CommonID("Unsynchronised lyrics/text transcription"))
		tag.AddUnsynchronisedLyricsFrame(id3v2.UnsynchronisedLyricsFrame{
			Encoding: enc,
			Language: "eng",
			Lyrics:   track.Lyrics,
		})
	}

	if err := tag.Save(); err != nil {
		return fmt.Errorf("save tags of %s: %w", path, err)
	}
	return nil
}

// textEncoding picks a Unicode encoding the tag version can store. ID3v2.3
// only knows ISO-8859-1 and UTF-16, and the muxer writes v2.3.
func textEncoding(tag *id3v2.Tag) id3v2.Encoding {
	if tag.Version() < 4 {
		return id3v2.EncodingUTF16
	}
	return id3v2.EncodingUTF8
}
