package graph

// beerQuery joins each beer with its brewery, pour session, location and
// normalized style classifications. Style links are optional: not every beer
// has been matched to an Untappd style.
const beerQuery = `
MATCH (brewery:brewery)-[:MAKES]->(beer:beer)-[:POURED_IN]->(session:session)
OPTIONAL MATCH (brewery)-[:LOCATED_AT]->(location:location)
OPTIONAL MATCH (beer)-[:HAS_STYLE]->(:style)-[:PART_OF]->(superstyle:superstyle)-[:PART_OF]->(metastyle:metastyle)
RETURN beer,
       brewery.name AS brewery,
       session.name AS session,
       location.name AS location,
       superstyle.name AS superstyle,
       metastyle.name AS metastyle
ORDER BY brewery.name, beer.name
`

const breweriesQuery = `MATCH (brewery:brewery) RETURN brewery.name AS name ORDER BY name`

const superstylesQuery = `MATCH (superstyle:superstyle) RETURN superstyle.name AS name ORDER BY name`

const metastylesQuery = `MATCH (metastyle:metastyle) RETURN metastyle.name AS name ORDER BY name`
