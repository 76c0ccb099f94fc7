package boletin

// Listing endpoints of the bulletin, one DataTables backend per asset class.
const (
	// EndpointMuebles lists movable-asset auction notices.
	EndpointMuebles = "/boletin/getRMP/"
	// EndpointInmuebles lists real-estate auction notices.
	EndpointInmuebles = "/boletin/getRIP/"
)

const (
	landingPath  = "/boletin/remates"
	downloadPath = "/boletin/downloadDocumentoByCodigo"
)

// ListingEntry is one row of a remates listing page.
type ListingEntry struct {
	DeudorNombre      string `json:"deudorNombre"`
	FchPublicacion    string `json:"fchPublicacion"`
	EntePublicador    string `json:"entePublicador"`
	CodigoValidacion  string `json:"codigoValidacion"`
	TipoProcedimiento string `json:"tipoProcedimiento"`
	Procedimiento     string `json:"procedimiento"`
}

// ListingPage is one DataTables response. Only Data drives the crawl; the
// counters are carried for logging and never trusted for termination.
type ListingPage struct {
	Draw            int            `json:"draw"`
	RecordsTotal    int            `json:"recordsTotal"`
	RecordsFiltered int            `json:"recordsFiltered"`
	Data            []ListingEntry `json:"data"`
}

// PageRequest addresses a DataTables window of a listing endpoint. The zero
// values of Start, Length and Draw mean the first page of 100 rows, draw 1.
type PageRequest struct {
	Endpoint string
	Start    int
	Length   int
	Draw     int
}

// DocumentURL is the public source link for a notice document. The bulletin
// serves documents from its canonical host no matter which base URL the
// crawl used.
func DocumentURL(codigoValidacion string) string {
	return "https://boletinconcursal.cl/boletin/downloadDocumentoByCodigo?codigoValidacion=" + codigoValidacion
}
