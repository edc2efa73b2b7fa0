package model

// ResultEntry is a result joined with everything a page needs to print it:
// the nomination, the nomination's award and the optional person and film.
type ResultEntry struct {
    Result
    Nomination Nomination
    Award      Award
    Person     *Person
    Film       *Film
}

// NominationEntry is a nomination together with its award.
type NominationEntry struct {
    Nomination
    Award Award
}

// FilmDetail is a film with all related records loaded for its page.
type FilmDetail struct {
    Film
    Country  *Country
    Genres   []Genre
    Director *Person
    Cast     []Person
    Results  []ResultEntry
}

// PersonDetail is a person with directed films, acted films and award
// results.
type PersonDetail struct {
    Person
    Directed []Film
    ActedIn  []Film
    Results  []ResultEntry
}

// NominationResults groups the results of one nomination.
type NominationResults struct {
    Nomination
    Results []ResultEntry
}

// AwardDetail is an award with its nominations and their results.
type AwardDetail struct {
    Award
    Nominations []NominationResults
}

// NominationDetail is a nomination with its award and results.
type NominationDetail struct {
    NominationEntry
    Results []ResultEntry
}
