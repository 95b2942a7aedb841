package gazetteer

import "itinerary-geometry/internal/geo"

// builtin hubs served by the search backend: city centres, airports,
// railway stations and river ports.
var builtin = []Place{
	{ID: "msk_city", Name: "Москва", Coordinate: geo.Coordinate{Lat: 55.7558, Lon: 37.6173}},
	{ID: "msk_svo", Name: "Москва (Шереметьево)", Coordinate: geo.Coordinate{Lat: 55.9726, Lon: 37.4146}},

	{ID: "yak_city", Name: "Якутск", Aliases: []string{"Якутск (город)"}, Coordinate: geo.Coordinate{Lat: 62.0355, Lon: 129.6755}},
	{ID: "yak_airport", Name: "Якутск (аэропорт)", Coordinate: geo.Coordinate{Lat: 62.093, Lon: 129.771}},
	{Name: "Якутск (ЖД вокзал)", Coordinate: geo.Coordinate{Lat: 62.039, Lon: 129.72}},
	// The Yakutsk railway terminus is across the Lena at Nizhny Bestyakh.
	{ID: "yak_station", Name: "Нижний Бестях (ЖД)", Coordinate: geo.Coordinate{Lat: 61.8675, Lon: 129.9564}},

	{ID: "sangar_port", Name: "Сангар (речной порт)", Coordinate: geo.Coordinate{Lat: 63.924, Lon: 127.471}},
	{ID: "olekminsk_port", Name: "Олёкминск (речной порт)", Coordinate: geo.Coordinate{Lat: 60.374, Lon: 120.406}},

	{ID: "mirny_airport", Coordinate: geo.Coordinate{Lat: 62.536, Lon: 113.961}},
	{ID: "mirny_city", Name: "Мирный", Coordinate: geo.Coordinate{Lat: 62.536, Lon: 113.961}},

	{ID: "neryungri_airport", Coordinate: geo.Coordinate{Lat: 56.659, Lon: 124.71}},
	{ID: "neryungri_station", Coordinate: geo.Coordinate{Lat: 56.6605, Lon: 124.71}},
	{ID: "neryungri_city", Name: "Нерюнгри", Coordinate: geo.Coordinate{Lat: 56.659, Lon: 124.71}},
}

// Builtin returns a copy of the compiled hub list.
func Builtin() []Place {
	out := make([]Place, len(builtin))
	copy(out, builtin)
	return out
}
