package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"goodfoods/internal/catalog"
)

// Seeder writes a sample restaurant catalog CSV and verifies it loads back
// through the catalog repository.
type Seeder struct {
	path string
}

func main() {
	path := flag.String("out", "data/restaurants.csv", "output path for the catalog CSV")
	flag.Parse()

	fmt.Println("🌱 Starting GoodFoods Catalog Seeder...")

	seeder := &Seeder{path: *path}

	fmt.Printf("\n🌱 Writing catalog to %s...\n", *path)
	if err := seeder.WriteCatalog(); err != nil {
		log.Fatalf("Failed to write catalog: %v", err)
	}
	fmt.Println("✅ Catalog written successfully")

	fmt.Println("\n🔎 Verifying catalog loads back...")
	repo, err := catalog.NewRepositoryFromFile(*path)
	if err != nil {
		log.Fatalf("Catalog verification failed: %v", err)
	}
	fmt.Printf("✅ Catalog verified: %d venues loaded\n", len(repo.All()))

	fmt.Println("\n🎉 Seeding completed! Catalog is ready for the reservation engine.")
}

// WriteCatalog writes the sample venues as CSV records.
func (s *Seeder) WriteCatalog() error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create catalog directory: %w", err)
		}
	}

	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("failed to create catalog file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{
		"restaurant_id", "name", "city", "area", "cuisine", "features",
		"approx_capacity", "table_counts", "price_level", "rating", "hours",
		"min_lead_time_mins", "cancellation_policy", "contact_phone", "contact_email",
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, record := range sampleVenues() {
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write record %s: %w", record[0], err)
		}
	}

	w.Flush()
	return w.Error()
}

func sampleVenues() [][]string {
	return [][]string{
		{"R001", "Spice Garden", "Bangalore", "Indiranagar", "North Indian|Mughlai", "outdoor seating|live music", "80", `{"2":10,"4":8,"6":4}`, "$$", "4.4", "12:00-23:00", "30", "free", "+91-80-4112-0001", "indiranagar@spicegarden.example.com"},
		{"R002", "Spice Garden", "Bangalore", "Koramangala", "North Indian|Mughlai", "family friendly|valet parking", "120", `{"2":14,"4":12,"6":6,"8":2}`, "$$", "4.2", "12:00-23:30", "30", "free", "+91-80-4112-0002", "koramangala@spicegarden.example.com"},
		{"R003", "Coastal Route", "Bangalore", "HSR Layout", "Coastal|Seafood", "outdoor seating", "60", `{"2":8,"4":8,"6":2}`, "$$$", "4.6", "12:30-22:30", "60", "fee", "+91-80-4112-0003", "hsr@coastalroute.example.com"},
		{"R004", "Bao House", "Bangalore", "MG Road", "Chinese|Pan Asian", "bar|rooftop", "90", `{"2":12,"4":10,"6":4}`, "$$$", "4.3", "12:00-00:00+1", "30", "fee", "+91-80-4112-0004", "mgroad@baohouse.example.com"},
		{"R005", "The Daily Grind", "Bangalore", "Whitefield", "Cafe|Continental", "wifi|pet friendly", "40", `{"2":10,"4":5}`, "$", "4.1", "08:00-20:00", "0", "free", "+91-80-4112-0005", "whitefield@dailygrind.example.com"},
		{"R006", "Tandoor Tales", "Mumbai", "Bandra", "North Indian|Tandoor", "live music|valet parking", "100", `{"2":10,"4":12,"6":5}`, "$$$", "4.5", "12:00-23:30", "30", "fee", "+91-22-4112-0006", "bandra@tandoortales.example.com"},
		{"R007", "Marine Catch", "Mumbai", "Colaba", "Seafood|Konkani", "sea view|outdoor seating", "70", `{"2":8,"4":9,"6":3}`, "$$$", "4.7", "12:30-23:00", "60", "hold_required", "+91-22-4112-0007", "colaba@marinecatch.example.com"},
		{"R008", "Pasta Republic", "Mumbai", "Andheri", "Italian|Continental", "family friendly|wifi", "55", `{"2":9,"4":7}`, "$$", "4.0", "11:30-23:00", "30", "free", "+91-22-4112-0008", "andheri@pastarepublic.example.com"},
		{"R009", "Sichuan Story", "Mumbai", "Lower Parel", "Chinese|Sichuan", "bar|private dining", "85", `{"2":10,"4":10,"8":3}`, "$$$", "4.4", "12:00-23:30", "30", "fee", "+91-22-4112-0009", "lowerparel@sichuanstory.example.com"},
		{"R010", "Biryani Junction", "Hyderabad", "Jubilee Hills", "Hyderabadi|Biryani", "family friendly|takeaway", "110", `{"2":12,"4":14,"6":6}`, "$$", "4.5", "11:00-23:00", "0", "free", "+91-40-4112-0010", "jubileehills@biryanijunction.example.com"},
		{"R011", "Telangana Thali", "Hyderabad", "Gachibowli", "Andhra|Telangana", "buffet|family friendly", "95", `{"2":8,"4":12,"6":5}`, "$", "4.2", "11:30-22:30", "0", "free", "+91-40-4112-0011", "gachibowli@telanganathali.example.com"},
		{"R012", "Midnight Mezze", "Hyderabad", "Banjara Hills", "Lebanese|Mediterranean", "rooftop|hookah|late night", "64", `{"2":8,"4":12}`, "$$$", "4.6", "18:00-01:00+1", "30", "fee", "+91-40-4112-0012", "banjarahills@midnightmezze.example.com"},
		{"R013", "Dosa Diaries", "Chennai", "T Nagar", "South Indian|Udupi", "breakfast|takeaway", "50", `{"2":12,"4":6}`, "$", "4.3", "07:00-22:00", "0", "free", "+91-44-4112-0013", "tnagar@dosadiaries.example.com"},
		{"R014", "Chettinad Court", "Chennai", "Mylapore", "Chettinad|South Indian", "family friendly", "75", `{"2":8,"4":10,"6":4}`, "$$", "4.4", "12:00-23:00", "30", "free", "+91-44-4112-0014", "mylapore@chettinadcourt.example.com"},
		{"R015", "The Harbour Deck", "Chennai", "ECR", "Continental|Seafood", "sea view|outdoor seating|bar", "130", `{"2":14,"4":14,"6":6,"8":4}`, "$$$", "4.5", "12:00-00:00+1", "60", "hold_required", "+91-44-4112-0015", "ecr@harbourdeck.example.com"},
		{"R016", "Purani Dilli", "Delhi", "Chandni Chowk", "Mughlai|Street Food", "heritage|takeaway", "45", `{"2":6,"4":8}`, "$", "4.1", "10:00-23:00", "0", "free", "+91-11-4112-0016", "chandnichowk@puranidilli.example.com"},
		{"R017", "Sakura Sky", "Delhi", "Aerocity", "Japanese|Sushi", "rooftop|bar|private dining", "60", `{"2":10,"4":6,"6":2}`, "$$$", "4.8", "18:00-01:30+1", "120", "hold_required", "+91-11-4112-0017", "aerocity@sakurasky.example.com"},
		{"R018", "Rajdhani Rasoi", "Delhi", "Connaught Place", "Rajasthani|North Indian", "buffet|family friendly", "100", `{"2":10,"4":12,"6":6}`, "$$", "4.3", "11:30-23:00", "30", "free", "+91-11-4112-0018", "cp@rajdhanirasoi.example.com"},
		{"R019", "Brew & Barrel", "Pune", "Koregaon Park", "Continental|Bar Food", "microbrewery|live music|outdoor seating", "140", `{"2":16,"4":14,"6":8}`, "$$", "4.2", "12:00-00:30+1", "30", "fee", "+91-20-4112-0019", "kp@brewandbarrel.example.com"},
		{"R020", "Maratha Bhavan", "Pune", "Deccan", "Maharashtrian", "family friendly|takeaway", "65", `{"2":8,"4":9,"6":3}`, "$", "4.4", "11:00-22:30", "0", "free", "+91-20-4112-0020", "deccan@marathabhavan.example.com"},
	}
}
