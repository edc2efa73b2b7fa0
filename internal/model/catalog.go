package model

import "time"

// Country represents a row in the `countries` table.  Films reference a
// country through a nullable foreign key.
type Country struct {
    ID   uint64 // countries.id
    Name string // countries.name
}

// Genre represents a row in the `genres` table.  Films and genres are
// linked through the `film_genres` join table.
type Genre struct {
    ID   uint64 // genres.id
    Name string // genres.name
}

// Person represents a row in the `people` table.  A person may direct
// films, appear in their cast and take part in award results.
//
// Fields:
//  ID         – primary key identifier.
//  Name       – display name.
//  OriginName – name in the original language (may be empty).
//  Birthday   – date of birth (nil if unknown).
//  Photo      – path of the uploaded photo relative to the media root.
type Person struct {
    ID         uint64     // people.id
    Name       string     // people.name
    OriginName string     // people.origin_name
    Birthday   *time.Time // people.birthday (nullable)
    Photo      string     // people.photo
}

// Film represents a row in the `films` table.  Genres and cast members
// live in join tables and are loaded separately by the repository.
type Film struct {
    ID          uint64  // films.id
    Name        string  // films.name
    OriginName  string  // films.origin_name
    Slogan      string  // films.slogan
    Length      *int    // films.length in minutes (nullable)
    Year        *int    // films.year (nullable)
    TrailerURL  string  // films.trailer_url
    Cover       string  // films.cover, path relative to the media root
    Description string  // films.description
    CountryID   *uint64 // films.country_id (nullable)
    DirectorID  *uint64 // films.director_id (nullable once the director is deleted)
}

// Award represents one edition of an award, e.g. "Оскар" 1999.
type Award struct {
    ID   uint64 // awards.id
    Name string // awards.name
    Year int    // awards.year
}

// Nomination is a named category belonging to exactly one award.
type Nomination struct {
    ID      uint64 // nominations.id
    Name    string // nominations.name
    AwardID uint64 // nominations.award_id
}

// Result is a single award outcome: a person and/or film nominated in a
// nomination, with a won flag.  The store does not check that the person
// or film is related to the nomination's award.
type Result struct {
    ID           uint64  // results.id
    NominationID uint64  // results.nomination_id
    PersonID     *uint64 // results.person_id (nullable)
    FilmID       *uint64 // results.film_id (nullable)
    IsWon        bool    // results.is_won
}
