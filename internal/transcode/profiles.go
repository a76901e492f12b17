package transcode

// Profile is a fixed encode target. Exactly two are used by the pipeline;
// they are build-time constants, never negotiated at runtime.
type Profile struct {
	Name        string
	Codec       string
	Format      string
	Bitrate     string
	Extension   string
	ContentType string

	// StripVideo drops any attached picture stream from the output.
	StripVideo bool
}

var (
	// Universal is the general-purpose download everyone gets.
	Universal = Profile{
		Name:        "universal",
		Codec:       "libmp3lame",
		Format:      "mp3",
		Bitrate:     "192k",
		Extension:   "mp3",
		ContentType: "audio/mpeg",
	}

	// Device is the iPhone ringtone variant: AAC in an ipod-flavored MP4,
	// renamed to .m4r. The codec is shared with other outputs in the
	// system; only the container rename and video strip differ.
	Device = Profile{
		Name:        "device",
		Codec:       "aac",
		Format:      "ipod",
		Bitrate:     "128k",
		Extension:   "m4r",
		ContentType: "audio/mp4",
		StripVideo:  true,
	}
)
