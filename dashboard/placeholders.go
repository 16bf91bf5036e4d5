// ABOUTME: Demo contacts shown before the first successful sync
package dashboard

import "github.com/harperreed/torque/models"

var placeholderContacts = []models.Contact{
	{FirstName: "Avery", LastName: "Chen", Email: "avery.chen@northwind.example", Phone: "+1 415 555 0142", Address: "500 Market St, San Francisco", Status: "active", Company: "Northwind Logistics"},
	{FirstName: "Mateo", LastName: "Alvarez", Email: "mateo@brightforge.example", PhonePro: "+1 312 555 0187", Address: "233 S Wacker Dr, Chicago", Status: "prospect", Company: "Brightforge"},
	{FirstName: "Priya", LastName: "Natarajan", Email: "priya.n@helio.example", Phone: "+44 20 7946 0321", Address: "1 Canada Square, London", Status: "active", Company: "Helio Systems"},
	{FirstName: "Jonas", LastName: "Berg", Email: "jonas.berg@fjord.example", Address: "Karl Johans gate 22, Oslo", Status: "inactive", Company: "Fjord Analytics"},
	{FirstName: "Imani", LastName: "Okafor", Email: "imani@lagoslabs.example", PhonePro: "+234 1 555 0199", Address: "Admiralty Way, Lagos", Status: "prospect", Company: "Lagos Labs"},
}

// Placeholders returns a fresh copy of the demo contact set.
func Placeholders() []models.Contact {
	out := make([]models.Contact, len(placeholderContacts))
	copy(out, placeholderContacts)
	return out
}
