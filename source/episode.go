package source

// Episode is one playable entry of a server. Links are passed through untouched.
type Episode struct {
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	Filename  string `json:"filename"`
	LinkEmbed string `json:"link_embed"`
	LinkM3U8  string `json:"link_m3u8"`
}

// String returns the display name of the episode.
func (e *Episode) String() string {
	if e.Name != "" {
		return e.Name
	}
	return e.Slug
}

// Server groups the episodes hosted by one mirror.
type Server struct {
	Name     string     `json:"server_name"`
	Episodes []*Episode `json:"server_data"`
}

// Detail is a record with its playable servers.
type Detail struct {
	*Record
	Servers []*Server `json:"servers"`
}

// EpisodeCount is the number of episodes on the largest server.
func (d *Detail) EpisodeCount() int {
	n := 0
	for _, s := range d.Servers {
		n = max(n, len(s.Episodes))
	}
	return n
}
