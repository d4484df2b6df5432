package mysql

const yachtColumns = `
  y.id, y.name, y.description, y.category, y.capacity, y.length_ft, y.cabins, y.price_per_day,
  y.city, y.region, y.country, y.lat, y.lng, y.amenities, y.images, y.rating, y.review_count,
  y.instant_book, y.crew_mode, y.crew_fee_per_day, y.year_built, y.owner_id, y.created_at, y.updated_at`

const insertYachtSQL = `
INSERT INTO yachts
  (id, name, description, category, capacity, length_ft, cabins, price_per_day,
   city, region, country, lat, lng, amenities, images, rating, review_count,
   instant_book, crew_mode, crew_fee_per_day, year_built, owner_id, created_at, updated_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

// Re-imports keep created_at; everything else is last write wins.
const upsertYachtOnDup = `
ON DUPLICATE KEY UPDATE
  name             = VALUES(name),
  description      = VALUES(description),
  category         = VALUES(category),
  capacity         = VALUES(capacity),
  length_ft        = VALUES(length_ft),
  cabins           = VALUES(cabins),
  price_per_day    = VALUES(price_per_day),
  city             = VALUES(city),
  region           = VALUES(region),
  country          = VALUES(country),
  lat              = VALUES(lat),
  lng              = VALUES(lng),
  amenities        = VALUES(amenities),
  images           = VALUES(images),
  rating           = VALUES(rating),
  review_count     = VALUES(review_count),
  instant_book     = VALUES(instant_book),
  crew_mode        = VALUES(crew_mode),
  crew_fee_per_day = VALUES(crew_fee_per_day),
  year_built       = VALUES(year_built),
  owner_id         = VALUES(owner_id),
  updated_at       = VALUES(updated_at)
`

const getYachtSQL = `SELECT` + yachtColumns + `
FROM yachts y
WHERE y.id = ?
`

const insertListingRequestSQL = `
INSERT INTO yacht_listing_requests
  (id, owner_id, first_name, last_name, email, phone, yacht_type, yacht_length, location, comments, status, created_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const insertMissSQL = `
INSERT INTO import_misses (source_id, http_status, reason)
VALUES (?, ?, ?)
ON DUPLICATE KEY UPDATE
  http_status = VALUES(http_status),
  reason      = VALUES(reason),
  seen_at     = CURRENT_TIMESTAMP
`

// -----------------------------------------------------------------------------
// BOOKINGS
// -----------------------------------------------------------------------------

const insertBookingSQL = `
INSERT INTO bookings
  (id, yacht_id, renter_id, start_date, end_date, total_price, crew_included, guest_count,
   special_requests, status, created_at, updated_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

// Bookings always carry the yacht name and owner for authorization and display.
const bookingSelect = `
SELECT
  b.id, b.yacht_id, b.renter_id, b.start_date, b.end_date, b.total_price, b.crew_included,
  b.guest_count, b.special_requests, b.status, b.created_at, b.updated_at,
  y.name, y.owner_id
FROM bookings b
JOIN yachts y ON y.id = b.yacht_id
`

const updateBookingStatusSQL = `UPDATE bookings SET status = ?, updated_at = ? WHERE id = ?`

// -----------------------------------------------------------------------------
// PARTIES
// -----------------------------------------------------------------------------

const insertPartySQL = `
INSERT INTO parties (id, email, password_hash, display_name, phone, created_at)
VALUES (?, ?, ?, ?, ?, ?)
`

const partyColumns = `id, email, display_name, phone, created_at`

const revokeTokenSQL = `
INSERT INTO revoked_tokens (jti, expires_at)
VALUES (?, ?)
ON DUPLICATE KEY UPDATE expires_at = VALUES(expires_at)
`
