package export

const (
	// MIMETypeKML is the media type of KML downloads.
	MIMETypeKML = "application/vnd.google-earth.kml+xml"
	// MIMETypeZip is the media type of zipped Shapefile bundles.
	MIMETypeZip = "application/zip"

	DefaultBaseName     = "parcels"
	DefaultFolderName   = "Parcels"
	DefaultFillColor    = "#FF0000"
	DefaultFillOpacity  = 0.5
	DefaultOutlineColor = "#000000"
	DefaultOutlineWidth = 2

	kmlStyleID = "parcel"

	// wgs84PRJ is the ESRI WKT written to every .prj file.
	wgs84PRJ = `GEOGCS["WGS 84",DATUM["WGS_1984",SPHEROID["WGS 84",6378137,298.257223563]],PRIMEM["Greenwich",0],UNIT["degree",0.0174532925199433]]`
)
