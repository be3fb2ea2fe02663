package postgres

// storeIncidentsSQL hands a window's violating batches to the stored
// function as seven parallel arrays.
const storeIncidentsSQL = `select addtemperatureincidents($1::bigint[], $2::varchar[], $3::text[], $4::int[], $5::int[], $6::timestamp[], $7::timestamp[]);`

const loadThresholdsSQL = `select threshold, "interval"
from configurations
where configurationid = $1 and isdeleted = false
limit 1;`
